package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/pkg/family"
)

func (c *CLI) personCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "person",
		Aliases: []string{"people"},
		Short:   "List and edit people",
	}
	cmd.AddCommand(c.personListCommand())
	cmd.AddCommand(c.personAddCommand())
	cmd.AddCommand(c.personEditCommand())
	cmd.AddCommand(c.personRemoveCommand())
	return cmd
}

func (c *CLI) personListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List everyone in the family",
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
			if len(snap.People) == 0 {
				printInfo("No people yet")
				return nil
			}
			for _, p := range snap.People {
				fmt.Println(personLine(p))
			}
			return nil
		},
	}
}

// personFields binds the editable person fields to flags.
type personFields struct {
	first, last, middle string
	birth, death, place string
	photo, description  string
}

func (f *personFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.first, "first", "", "first name")
	cmd.Flags().StringVar(&f.last, "last", "", "last name")
	cmd.Flags().StringVar(&f.middle, "middle", "", "middle name")
	cmd.Flags().StringVar(&f.birth, "birth", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.death, "death", "", "death date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.place, "place", "", "birth place")
	cmd.Flags().StringVar(&f.photo, "photo", "", "photo URL")
	cmd.Flags().StringVar(&f.description, "description", "", "free-form description")
}

func (f *personFields) person(id string) family.Person {
	return family.Person{
		ID:          id,
		FirstName:   f.first,
		LastName:    f.last,
		MiddleName:  f.middle,
		BirthDate:   f.birth,
		DeathDate:   f.death,
		BirthPlace:  f.place,
		PhotoURL:    f.photo,
		Description: f.description,
	}
}

// patch includes only the flags given on the command line, so an
// explicit empty value clears the field.
func (f *personFields) patch(cmd *cobra.Command) family.PersonPatch {
	var p family.PersonPatch
	set := func(flag string, v *string, dst **string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("first", &f.first, &p.FirstName)
	set("last", &f.last, &p.LastName)
	set("middle", &f.middle, &p.MiddleName)
	set("birth", &f.birth, &p.BirthDate)
	set("death", &f.death, &p.DeathDate)
	set("place", &f.place, &p.BirthPlace)
	set("photo", &f.photo, &p.PhotoURL)
	set("description", &f.description, &p.Description)
	return p
}

func (c *CLI) personAddCommand() *cobra.Command {
	var (
		fields personFields
		id     string
	)
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a person",
		Example: `  drevorod person add --last Иванова --first Анна --birth 2008-04-12`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := st.CreatePerson(cmd.Context(), fields.person(id))
			if err != nil {
				return err
			}
			printSuccess("Added %s", StyleValue.Render(p.FullName()))
			printKeyValue("id", p.ID)
			return nil
		},
	}
	fields.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "person id (default: generated)")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("last")
	return cmd
}

func (c *CLI) personEditCommand() *cobra.Command {
	var fields personFields
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a person's details",
		Example: `  drevorod person edit 5 --death 2090-01-01
  drevorod person edit 5 --photo ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := st.UpdatePerson(cmd.Context(), args[0], fields.patch(cmd))
			if err != nil {
				return err
			}
			printSuccess("Updated %s", StyleValue.Render(p.FullName()))
			return nil
		},
	}
	fields.register(cmd)
	return cmd
}

func (c *CLI) personRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a person and all their relationships",
		Args:    cobra.ExactArgs(1),
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
			rels := len(snap.RelationshipsOf(args[0]))
			if err := st.DeletePerson(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			if rels > 0 {
				printDetail("%d relationship(s) removed with them", rels)
			}
			return nil
		},
	}
}
