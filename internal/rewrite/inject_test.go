package rewrite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarweave/jarweave/internal/classfile"
	"github.com/jarweave/jarweave/internal/metadata"
)

func TestInjectParameterNames(t *testing.T) {
	cf, err := classfile.ParseBytes(classBytes(t, "com/acme/Foo",
		[2]string{"bar", "(ILjava/lang/String;)V"},
		[2]string{"baz", "()V"},
	))
	require.NoError(t, err)

	changed, err := InjectParameterNames(cf, testIndex(t))
	require.NoError(t, err)
	assert.True(t, changed)

	names, err := cf.MethodParameterNames(&cf.Methods[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "label"}, names)
}

func TestInjectNoMatchLeavesClassUnchanged(t *testing.T) {
	original := classBytes(t, "com/acme/Nobody", [2]string{"bar", "(I)V"})
	cf, err := classfile.ParseBytes(original)
	require.NoError(t, err)

	changed, err := InjectParameterNames(cf, testIndex(t))
	require.NoError(t, err)
	assert.False(t, changed)

	out, err := cf.Bytes()
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestInjectNestedClassOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.jar")
	writeJar(t, path, map[string][]byte{
		metadata.DeclarationResource:    []byte("includes=com/acme/**\n"),
		metadata.ParameterNamesResource: []byte("com.acme.Outer$Inner.get(java.lang.String)=key\n"),
	})
	idx, err := metadata.Open(path)
	require.NoError(t, err)

	cf, err := classfile.ParseBytes(classBytes(t, "com/acme/Outer$Inner",
		[2]string{"get", "(Ljava/lang/String;)Ljava/lang/Object;"},
	))
	require.NoError(t, err)

	changed, err := InjectParameterNames(cf, idx)
	require.NoError(t, err)
	require.True(t, changed)

	names, err := cf.MethodParameterNames(&cf.Methods[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"key"}, names)
}
