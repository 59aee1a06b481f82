package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/todolist-api/internal/repository"
	"github.com/yukikurage/todolist-api/internal/services"
	"gopkg.in/yaml.v3"
)

// teamsFile is the seed file format:
//
//	teams:
//	  - Marketing
//	  - Engineering
type teamsFile struct {
	Teams []string `yaml:"teams"`
}

func loadTeamsFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read teams file: %w", err)
	}

	var file teamsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse teams file: %w", err)
	}
	if len(file.Teams) == 0 {
		return nil, fmt.Errorf("teams file %s lists no teams", path)
	}

	return file.Teams, nil
}

func teamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Manage the teams members can join",
	}

	cmd.AddCommand(teamsListCmd())
	cmd.AddCommand(teamsSeedCmd())

	return cmd
}

func teamsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, logger, err := connect()
			if err != nil {
				return err
			}

			teams, err := services.NewTeamService(repository.NewTeamRepository(db), logger).ListTeams()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, team := range teams {
				fmt.Fprintf(out, "%d\t%s\n", team.ID, team.Name)
			}
			return nil
		},
	}
}

func teamsSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the teams listed in a YAML file",
		Long: `Create the teams listed in a YAML file. Teams that already exist
are skipped, so the command can be run repeatedly.

Example:
  todoctl teams seed --file teams.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := loadTeamsFile(file)
			if err != nil {
				return err
			}

			_, db, logger, err := connect()
			if err != nil {
				return err
			}

			created, err := services.NewTeamService(repository.NewTeamRepository(db), logger).SeedTeams(cmd.Context(), names)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %d of %d teams\n", len(created), len(names))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "teams.yaml", "YAML file listing team names")

	return cmd
}
