package cli

import (
	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/pkg/layout"
	"github.com/firemesscode/drevorod/pkg/store"
)

func (c *CLI) unionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "union",
		Short: "Work with couples and their children",
	}
	cmd.AddCommand(c.unionAssignCommand())
	return cmd
}

func (c *CLI) unionAssignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <parent1> <parent2> <child>",
		Short: "Make a child the shared child of a couple",
		Long: `Add the parent_child links that make child a shared child of the couple.
The parents must be spouses, and the child may not already have a parent
outside the couple.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			created, err := store.AssignChildToUnion(cmd.Context(), st, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			union := layout.UnionID(args[0], args[1])
			if len(created) == 0 {
				printInfo("%s is already a child of %s", args[2], union)
				return nil
			}
			printSuccess("Assigned %s to %s", args[2], union)
			for _, r := range created {
				printDetail("%s: %s → %s", r.ID, r.Person1ID, r.Person2ID)
			}
			return nil
		},
	}
}
