package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cheeseshop/internal/services"
	"cheeseshop/internal/storage"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := flags.openDB()
			if err != nil {
				return err
			}
			defer storage.Close(db)
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newSeedCmd(flags *rootFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import cheese types and cheese from a YAML/JSON seed file (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf, err := services.LoadSeedFile(file)
			if err != nil {
				return err
			}
			db, err := flags.openDB()
			if err != nil {
				return err
			}
			defer storage.Close(db)
			res, err := services.Seed(cmd.Context(), db, sf)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cheese types: %d created, %d skipped\ncheese: %d created, %d skipped\n",
				res.TypesCreated, res.TypesSkipped, res.CheeseCreated, res.CheeseSkipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file path")
	return cmd
}

type listedCheese struct {
	ID            uint64                `json:"id"`
	Title         string                `json:"title"`
	CheeseTypeID  uint64                `json:"cheese_type_id"`
	PackagingType storage.PackagingType `json:"packaging_type"`
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var packaging, cheeseType string
	var types bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print cheese (or cheese types with --types) as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter services.CheeseFilter
			if cmd.Flags().Changed("packaging") {
				pt, err := storage.ParsePackagingType(packaging)
				if err != nil {
					return err
				}
				filter.PackagingType = &pt
			}
			if cmd.Flags().Changed("type") {
				filter.CheeseTypeName = &cheeseType
			}
			db, err := flags.openDB()
			if err != nil {
				return err
			}
			defer storage.Close(db)

			if types {
				list, err := services.NewCheeseTypeService(db).List(cmd.Context())
				if err != nil {
					return err
				}
				out := make([]map[string]any, 0, len(list))
				for _, ct := range list {
					out = append(out, map[string]any{"id": ct.ID, "name": ct.Name})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			list, err := services.NewCheeseService(db).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := make([]listedCheese, 0, len(list))
			for _, c := range list {
				out = append(out, listedCheese{ID: c.ID, Title: c.Title, CheeseTypeID: c.CheeseTypeID, PackagingType: c.PackagingType})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&packaging, "packaging", "", "filter by packaging type")
	cmd.Flags().StringVar(&cheeseType, "type", "", "filter by cheese type name")
	cmd.Flags().BoolVar(&types, "types", false, "list cheese types instead of cheese")
	return cmd
}

func newAuditCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the most recent catalog write events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := flags.openDB()
			if err != nil {
				return err
			}
			defer storage.Close(db)
			logs, err := services.NewLogService(db).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, l := range logs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\t%s\n", l.Timestamp.Format("2006-01-02T15:04:05Z07:00"), l.Event, l.EntityID, l.RequestID, l.Description)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events to show")
	return cmd
}
