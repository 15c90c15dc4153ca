package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codecrafter2018/Report-Generator/modules/reporting/infrastructure/excel"
	"github.com/codecrafter2018/Report-Generator/modules/reporting/infrastructure/persistence"
	"github.com/codecrafter2018/Report-Generator/modules/reporting/services"
	"github.com/codecrafter2018/Report-Generator/pkg/composables"
	"github.com/codecrafter2018/Report-Generator/pkg/configuration"
)

type runOutput struct {
	Command    string              `json:"command"`
	DurationMS int64               `json:"duration_ms"`
	Result     services.RunSummary `json:"result"`
}

func newRunCmd() *cobra.Command {
	var (
		segment     string
		lobs        string
		roles       string
		seedRoles   string
		destination string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build and deliver one report per hierarchy node",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			defer conf.Unload()
			log := conf.Logger().WithField("component", "report-runner")

			if segment == "" {
				segment = conf.Report.Segment
			}
			lobList := parseCSV(lobs)
			if lobList == nil {
				lobList = conf.Report.LOBList()
			}
			roleList := parseCSV(roles)
			if roleList == nil {
				roleList = conf.Report.RoleList()
			}
			seedList := parseCSV(seedRoles)
			if seedList == nil {
				seedList = conf.Report.SeedRoleList()
			}
			if destination == "" {
				destination = conf.Report.DestinationID
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := composables.WithPool(cmd.Context(), pool)
			store := persistence.NewRecordStore()
			emitter := excel.NewEmitter(
				excel.NewDirDeliverer(),
				destination,
				conf.Report.TempDir,
				log.WithField("component", "report-emitter"),
			)
			orch := services.NewOrchestrator(store, emitter, services.OrchestratorOptions{
				Filter: services.UserFilter{
					Segment: segment,
					LOBs:    lobList,
					Roles:   roleList,
				},
				SeedRoles: seedList,
			}, log)

			start := time.Now()
			sum, err := orch.Run(ctx)
			if err != nil {
				return err
			}

			return writeJSON(runOutput{
				Command:    "report run",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     sum,
			})
		},
	}

	cmd.Flags().StringVar(&segment, "segment", "", "User segment filter (default from env)")
	cmd.Flags().StringVar(&lobs, "lobs", "", "Comma-separated line-of-business codes")
	cmd.Flags().StringVar(&roles, "roles", "", "Comma-separated role filter")
	cmd.Flags().StringVar(&seedRoles, "seed-roles", "", "Comma-separated roles that start a traversal")
	cmd.Flags().StringVar(&destination, "destination", "", "Destination folder for finished reports")
	return cmd
}

func parseCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
