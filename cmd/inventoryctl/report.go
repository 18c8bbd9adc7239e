package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tnqbao/gau-inventory-service/service"
)

var reportDir string

var reportCmd = &cobra.Command{
	Use:   "report SYSTEM",
	Short: "Render the PDF report of a system to a local file",
	Long:  `SYSTEM is the system id or its exact name.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportDir, "out", "o", ".", "directory the PDF is written to")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	ctx := cmd.Context()
	svc := newLocalService(db, os.Stderr)

	systemID, err := resolveSystem(cmd, svc, args[0])
	if err != nil {
		return err
	}

	pdf, fileName, err := svc.RenderSystemReport(ctx, systemID)
	if err != nil {
		return err
	}

	path := filepath.Join(reportDir, fileName)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func resolveSystem(cmd *cobra.Command, svc *service.Service, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	systems, err := svc.ListSystems(cmd.Context(), ref)
	if err != nil {
		return uuid.Nil, err
	}
	for _, s := range systems {
		if strings.EqualFold(s.Name, ref) {
			return s.ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("no system named %q", ref)
}
