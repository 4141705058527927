package transform

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarweave/jarweave/internal/classfile"
	"github.com/jarweave/jarweave/internal/metadata"
)

func writeZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func metadataArchive(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "platform-metadata-8.4.jar")
	writeZip(t, path, map[string][]byte{
		metadata.DeclarationResource:    []byte("includes=com/acme/**\n"),
		metadata.ParameterNamesResource: []byte("com.acme.Foo.bar(int)=count\n"),
	})
	return path
}

func apiClass(t *testing.T) []byte {
	t.Helper()

	cp := classfile.ConstantPool{{}}
	nameIdx, err := cp.AddUtf8("com/acme/Foo")
	require.NoError(t, err)
	cp = append(cp, classfile.Constant{Tag: classfile.TagClass, Raw: []byte{byte(nameIdx >> 8), byte(nameIdx)}})
	thisClass := uint16(len(cp) - 1)
	superIdx, err := cp.AddUtf8("java/lang/Object")
	require.NoError(t, err)
	cp = append(cp, classfile.Constant{Tag: classfile.TagClass, Raw: []byte{byte(superIdx >> 8), byte(superIdx)}})

	cf := &classfile.ClassFile{
		Major:        52,
		AccessFlags:  classfile.AccPublic,
		ThisClass:    thisClass,
		SuperClass:   uint16(len(cp) - 1),
		ConstantPool: cp,
	}
	mName, err := cf.ConstantPool.AddUtf8("bar")
	require.NoError(t, err)
	mDesc, err := cf.ConstantPool.AddUtf8("(I)V")
	require.NoError(t, err)
	cf.Methods = append(cf.Methods, classfile.Member{
		AccessFlags:     classfile.AccPublic,
		NameIndex:       mName,
		DescriptorIndex: mDesc,
	})

	data, err := cf.Bytes()
	require.NoError(t, err)
	return data
}

func TestParamsValidate(t *testing.T) {
	meta := metadataArchive(t)

	assert.NoError(t, Params{Version: "8.4", MetadataPath: meta}.Validate())
	assert.Error(t, Params{MetadataPath: meta}.Validate())
	assert.Error(t, Params{Version: "8.4"}.Validate())
	assert.Error(t, Params{Version: "8.4", MetadataPath: filepath.Join(t.TempDir(), "gone.jar")}.Validate())
}

func TestAppliesTo(t *testing.T) {
	tf, err := New(Params{Version: "8.4", MetadataPath: metadataArchive(t)}, nil)
	require.NoError(t, err)

	assert.Equal(t, "platform-api-8.4.jar", tf.ArchiveName())
	assert.True(t, tf.AppliesTo("libs/platform-api-8.4.jar"))
	assert.False(t, tf.AppliesTo("libs/platform-api-8.5.jar"))
	assert.False(t, tf.AppliesTo("platform-api-8.4.jar.bak"))
	assert.False(t, tf.AppliesTo("other-8.4.jar"))
}

func TestApplyRewritesAPIArchive(t *testing.T) {
	tf, err := New(Params{Version: "8.4", MetadataPath: metadataArchive(t)}, nil)
	require.NoError(t, err)

	jar := filepath.Join(t.TempDir(), "platform-api-8.4.jar")
	writeZip(t, jar, map[string][]byte{
		"com/acme/Foo.class": apiClass(t),
		"readme.txt":         []byte("hello"),
	})

	outputDir := t.TempDir()
	require.NoError(t, tf.Apply(jar, outputDir))

	data, err := os.ReadFile(filepath.Join(outputDir, "com", "acme", "Foo.class"))
	require.NoError(t, err)
	cf, err := classfile.ParseBytes(data)
	require.NoError(t, err)
	names, err := cf.MethodParameterNames(&cf.Methods[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"count"}, names)

	text, err := os.ReadFile(filepath.Join(outputDir, "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), text)
}

func TestApplyPassesThroughForeignInput(t *testing.T) {
	tf, err := New(Params{Version: "8.4", MetadataPath: metadataArchive(t)}, nil)
	require.NoError(t, err)

	// a different version of the API JAR is not this transform's input
	jar := filepath.Join(t.TempDir(), "platform-api-9.0.jar")
	content := []byte{0xDE, 0xAD, 0xBE, 0xEF} // never opened, content is opaque
	require.NoError(t, os.WriteFile(jar, content, 0644))

	outputDir := t.TempDir()
	require.NoError(t, tf.Apply(jar, outputDir))

	outputs, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, outputs, 1, "pass-through produces exactly one output")
	assert.Equal(t, "platform-api-9.0.jar", outputs[0].Name())

	got, err := os.ReadFile(filepath.Join(outputDir, outputs[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestApplyMissingMetadataResource(t *testing.T) {
	incomplete := filepath.Join(t.TempDir(), "platform-metadata-8.4.jar")
	writeZip(t, incomplete, map[string][]byte{
		metadata.DeclarationResource: []byte("includes=com/**\n"),
	})

	tf, err := New(Params{Version: "8.4", MetadataPath: incomplete}, nil)
	require.NoError(t, err)

	jar := filepath.Join(t.TempDir(), "platform-api-8.4.jar")
	writeZip(t, jar, map[string][]byte{"readme.txt": []byte("x")})

	err = tf.Apply(jar, t.TempDir())
	var loadErr *metadata.LoadError
	require.ErrorAs(t, err, &loadErr)
}
