package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jarweave/jarweave/internal/archive"
	"github.com/jarweave/jarweave/internal/classfile"
	"github.com/jarweave/jarweave/internal/cli/config"
	"github.com/jarweave/jarweave/internal/cli/ui"
	"github.com/jarweave/jarweave/internal/metadata"
)

var (
	inspectMetadata string
	inspectAll      bool
)

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <input.jar>",
		Short: "Report public-API classes and parameter-name coverage",
		Long: `Inspect an API archive against the platform metadata.

Lists each class on the published API surface together with how many of its
methods have parameter names recorded in the metadata archive. Useful for
validating a metadata drop before wiring it into a build.`,
		Example: `  # Inspect with the configured metadata archive
  jarweave inspect libs/platform-api-8.4.jar

  # Inspect against a candidate metadata archive, including non-API classes
  jarweave inspect platform-api-8.4.jar -m candidate-metadata.jar --all`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}

	cmd.Flags().StringVarP(&inspectMetadata, "metadata", "m", "", "Path to the platform metadata archive")
	cmd.Flags().BoolVar(&inspectAll, "all", false, "Also list class entries outside the API surface")

	return cmd
}

// classReport is the coverage summary for one class entry
type classReport struct {
	name      string
	publicAPI bool
	methods   int
	covered   int
}

func runInspect(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	metadataPath := inspectMetadata
	if metadataPath == "" {
		cfg, err := config.Load()
		if err == nil && cfg.Platform.Metadata != "" {
			metadataPath = cfg.Platform.Metadata
		}
	}
	if metadataPath == "" {
		return fmt.Errorf("no metadata archive configured - pass --metadata or set platform.metadata in jarweave.yml")
	}

	index, err := metadata.Open(metadataPath)
	if err != nil {
		return err
	}

	reports, err := collectReports(inputPath, index)
	if err != nil {
		return err
	}

	printReports(reports, index)
	return nil
}

func collectReports(inputPath string, index *metadata.Index) ([]classReport, error) {
	r, err := archive.OpenReader(inputPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var reports []classReport
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".class") {
			continue
		}

		internalName := strings.TrimSuffix(f.Name, ".class")
		report := classReport{
			name:      classfile.InternalToCanonical(internalName),
			publicAPI: index.IsPublicAPI(internalName),
		}

		if report.publicAPI {
			data, err := archive.ReadEntry(f)
			if err != nil {
				return nil, err
			}
			cf, err := classfile.ParseBytes(data)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", f.Name, err)
			}
			if err := countCoverage(cf, index, &report); err != nil {
				return nil, fmt.Errorf("entry %s: %w", f.Name, err)
			}
		}

		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].name < reports[j].name })
	return reports, nil
}

func countCoverage(cf *classfile.ClassFile, index *metadata.Index, report *classReport) error {
	internalName, err := cf.ThisClassName()
	if err != nil {
		return err
	}
	owner := classfile.InternalToCanonical(internalName)

	for i := range cf.Methods {
		method := &cf.Methods[i]
		name, err := method.Name(cf.ConstantPool)
		if err != nil {
			return err
		}
		descriptor, err := method.Descriptor(cf.ConstantPool)
		if err != nil {
			return err
		}
		paramTypes, err := classfile.ParameterTypes(descriptor)
		if err != nil {
			return err
		}
		if len(paramTypes) == 0 {
			// nothing to name
			continue
		}

		report.methods++
		if _, ok := index.ParameterNames(owner, name, paramTypes); ok {
			report.covered++
		}
	}
	return nil
}

func printReports(reports []classReport, index *metadata.Index) {
	titleColor := color.New(color.FgCyan, color.Bold)

	apiClasses := 0
	totalMethods := 0
	totalCovered := 0

	table := ui.NewTable(os.Stdout, "CLASS", "API", "COVERED")
	for _, report := range reports {
		if report.publicAPI {
			apiClasses++
			totalMethods += report.methods
			totalCovered += report.covered
			table.AddRow(report.name, "yes", fmt.Sprintf("%d/%d", report.covered, report.methods))
		} else if inspectAll {
			table.AddRow(report.name, "no", "-")
		}
	}

	titleColor.Printf("API surface: %d of %d classes, %d signatures in metadata\n\n",
		apiClasses, len(reports), index.EntryCount())
	table.Render()

	if totalMethods > 0 {
		fmt.Println()
		titleColor.Printf("Coverage: %d/%d parameterized API methods\n", totalCovered, totalMethods)
	}
}
