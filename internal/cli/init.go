package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/pkg/family"
	fio "github.com/firemesscode/drevorod/pkg/io"
)

func (c *CLI) initCommand() *cobra.Command {
	var (
		force bool
		empty bool
	)
	cmd := &cobra.Command{
		Use:   "init [family.json]",
		Short: "Write a family file to start from",
		Long: `Write a family file seeded with the demo family (two couples across three
generations), or an empty one with --empty. The format follows the
extension: .json or .toml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "family.json"
			if len(args) == 1 {
				path = args[0]
			}
			return runInit(path, empty, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&empty, "empty", false, "write a family with no people")
	return cmd
}

func runInit(path string, empty, force bool) error {
	if _, err := fio.FormatFromPath(path); err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	snap := family.Demo()
	if empty {
		snap = family.Snapshot{}
	}
	if err := fio.ExportFile(snap, path); err != nil {
		return err
	}

	printSuccess("Wrote %d people and %d relationships", len(snap.People), len(snap.Relationships))
	printFile(path)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s --data %s render", appName, path))
	return nil
}
