package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dosada05/tournament-admin/apiclient"
	"github.com/Dosada05/tournament-admin/config"
	"github.com/Dosada05/tournament-admin/phases"
)

var phaseTypesCmd = &cobra.Command{
	Use:   "phase-types",
	Args:  cobra.ExactArgs(0),
	Short: "Print the phase type catalog of the tournament API",
}

func init() {
	token := addTokenFlag(phaseTypesCmd)

	phaseTypesCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadClient(*token)
		if err != nil {
			return err
		}
		reg, err := loadRegistry(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return printRegistry(cmd.OutOrStdout(), reg)
	}
}

func addTokenFlag(cmd *cobra.Command) *string {
	return cmd.Flags().StringP("token", "t", "", "API access token (default $TOURNAMENT_ADMIN_TOKEN)")
}

func newClient(cfg *config.ClientConfig) *apiclient.Client {
	return apiclient.New(apiclient.Options{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout}, nil)
}

func loadRegistry(ctx context.Context, cfg *config.ClientConfig) (*phases.Registry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reg, err := phases.Load(ctx, apiclient.PhaseTypeSource{Client: newClient(cfg), Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("load phase types: %w", err)
	}
	return reg, nil
}

func printRegistry(out io.Writer, reg *phases.Registry) error {
	if out == nil {
		out = os.Stdout
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tLABEL\tHOME/AWAY\tREQUIRED\tOPTIONAL\tCONFIG")
	for _, t := range reg.Types() {
		keys := make([]string, 0, len(t.ConfigOptions))
		for k, label := range t.ConfigOptions {
			keys = append(keys, k+"="+label)
		}
		sort.Strings(keys)
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\t%s\n",
			t.Value, t.Label, t.SupportsHomeAway,
			dash(strings.Join(t.RequiredFields, ",")),
			dash(strings.Join(t.OptionalFields, ",")),
			dash(strings.Join(keys, ",")))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
