package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/pkg/family"
)

func (c *CLI) relCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rel",
		Aliases: []string{"relationship"},
		Short:   "List and edit relationships",
	}
	cmd.AddCommand(c.relListCommand())
	cmd.AddCommand(c.relAddCommand())
	cmd.AddCommand(c.relEditCommand())
	cmd.AddCommand(c.relRemoveCommand())
	return cmd
}

func (c *CLI) relListCommand() *cobra.Command {
	var person string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List relationships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			rels := snap.Relationships
			if person != "" {
				rels = snap.RelationshipsOf(person)
			}
			if len(rels) == 0 {
				printInfo("No relationships")
				return nil
			}
			for _, r := range rels {
				fmt.Println(relationshipLine(r, snap))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&person, "person", "p", "", "only relationships involving this person")
	return cmd
}

func (c *CLI) relAddCommand() *cobra.Command {
	var (
		kind  string
		label string
		id    string
	)
	cmd := &cobra.Command{
		Use:   "add <person1> <person2>",
		Short: "Connect two people",
		Long: `Connect two people. For parent_child (the default) person1 is the parent
and person2 the child; spouse links are symmetric.`,
		Example: `  drevorod rel add 3 6
  drevorod rel add 5 7 --type spouse --label "с 2030"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := family.ParseKind(kind)
			if err != nil {
				return err
			}
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			r, err := st.CreateRelationship(cmd.Context(), family.Relationship{
				ID:        id,
				Person1ID: args[0],
				Person2ID: args[1],
				Kind:      k,
				Label:     label,
			})
			if err != nil {
				return err
			}
			printSuccess("Added %s %s", r.Kind, StyleDim.Render(r.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", string(family.KindParentChild), "relationship type: parent_child, spouse")
	cmd.Flags().StringVarP(&label, "label", "l", "", "free-form label")
	cmd.Flags().StringVar(&id, "id", "", "relationship id (default: generated)")
	return cmd
}

func (c *CLI) relEditCommand() *cobra.Command {
	var (
		kind  string
		label string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a relationship's type or label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch family.RelationshipPatch
			if cmd.Flags().Changed("type") {
				k, err := family.ParseKind(kind)
				if err != nil {
					return err
				}
				patch.Kind = &k
			}
			if cmd.Flags().Changed("label") {
				patch.Label = &label
			}

			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			r, err := st.UpdateRelationship(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			printSuccess("Updated %s", r.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "", "relationship type: parent_child, spouse")
	cmd.Flags().StringVarP(&label, "label", "l", "", "free-form label")
	return cmd
}

func (c *CLI) relRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a relationship",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteRelationship(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			return nil
		},
	}
}
