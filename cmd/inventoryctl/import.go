package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tnqbao/gau-inventory-service/internal/seed"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Create inventory records from a YAML seed file",
	Long: `Import reads data centers, servers, clusters, machines, systems with their
components and deployments, roles and users from a YAML file. Entries refer to
each other by name. The import stops at the first invalid entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := seed.Load(f)
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	sum, err := seed.Apply(cmd.Context(), newLocalService(db, os.Stderr), s)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "data centers: %d\nservers: %d\nclusters: %d\nmachines: %d (assigned: %d)\n",
		sum.DataCenters, sum.Servers, sum.Clusters, sum.Machines, sum.Assignments)
	fmt.Fprintf(out, "systems: %d\ncomponents: %d\ndeployments: %d\nroles: %d\nusers: %d (grants: %d)\n",
		sum.Systems, sum.Components, sum.Deployments, sum.Roles, sum.Users, sum.Grants)
	return err
}
