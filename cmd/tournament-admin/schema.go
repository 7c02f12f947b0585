package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/Dosada05/tournament-admin/config"
	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/phases"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Validate and push tournament phase schemas",
}

var errSchemaInvalid = errors.New("schema has invalid phases")

// schemaFile - схема турнира в TOML:
//
//	[[phase]]
//	name = "Groups"
//	type = "groups"
//	groups_count = 4
//	teams_per_group = 4
//	[phase.config]
//	seeding = "random"
type schemaFile struct {
	Phases []phaseFile `toml:"phase"`
}

type phaseFile struct {
	Name          string         `toml:"name"`
	Type          string         `toml:"type"`
	HomeAway      bool           `toml:"home_away,omitempty"`
	TeamsAdvance  *int           `toml:"teams_advance,omitempty"`
	GroupsCount   *int           `toml:"groups_count,omitempty"`
	TeamsPerGroup *int           `toml:"teams_per_group,omitempty"`
	Config        map[string]any `toml:"config,omitempty"`
}

func (p phaseFile) phase() models.Phase {
	cfg := models.PhaseConfig{}
	for k, v := range p.Config {
		// TOML отдаёт целые как int64.
		if n, ok := v.(int64); ok {
			cfg[k] = int(n)
			continue
		}
		cfg[k] = v
	}
	return models.Phase{
		Name:          p.Name,
		Type:          p.Type,
		HomeAway:      p.HomeAway,
		TeamsAdvance:  p.TeamsAdvance,
		GroupsCount:   p.GroupsCount,
		TeamsPerGroup: p.TeamsPerGroup,
		Config:        cfg,
	}
}

func readSchemaFile(path string) (*schemaFile, error) {
	var f schemaFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("read schema file: unknown keys %v", keys)
	}
	return &f, nil
}

// phaseReport - итог проверки одной фазы из файла.
type phaseReport struct {
	Position int
	Name     string
	Errors   map[string]string
}

// replaySchema прогоняет фазы файла через редактор так же, как их добавлял бы
// пользователь формы: beginAdd, затем commitAdd.
func replaySchema(f *schemaFile, reg *phases.Registry, log *slog.Logger) (*phases.Editor, []phaseReport) {
	ed := phases.NewEditor(models.PhaseSchema{}, reg, log)
	var reports []phaseReport
	for i, pf := range f.Phases {
		if err := ed.BeginAdd(); err != nil {
			reports = append(reports, phaseReport{Position: i + 1, Name: pf.Name, Errors: map[string]string{"": err.Error()}})
			continue
		}
		if err := ed.CommitAdd(pf.phase()); err != nil {
			errs := phases.FieldErrors(err)
			if errs == nil {
				errs = map[string]string{"": err.Error()}
			}
			reports = append(reports, phaseReport{Position: i + 1, Name: pf.Name, Errors: errs})
			_ = ed.CancelAdd()
		}
	}
	return ed, reports
}

func printReports(out io.Writer, total int, reports []phaseReport) {
	for _, r := range reports {
		fmt.Fprintf(out, "phase %d (%q):\n", r.Position, r.Name)
		fields := make([]string, 0, len(r.Errors))
		for field := range r.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(out, "  %s\n", r.Errors[field])
		}
	}
	fmt.Fprintf(out, "%d of %d phases valid\n", total-len(reports), total)
}

func printSchema(out io.Writer, s models.PhaseSchema) {
	w := toml.NewEncoder(out)
	w.Indent = "  "
	doc := schemaFile{Phases: make([]phaseFile, len(s.Phases))}
	for i, p := range s.Phases {
		doc.Phases[i] = phaseFile{
			Name:          p.Name,
			Type:          p.Type,
			HomeAway:      p.HomeAway,
			TeamsAdvance:  p.TeamsAdvance,
			GroupsCount:   p.GroupsCount,
			TeamsPerGroup: p.TeamsPerGroup,
			Config:        p.Config,
		}
	}
	if err := w.Encode(doc); err != nil {
		fmt.Fprintf(out, "# encode schema: %v\n", err)
	}
}

type schemaRun struct {
	cfg *config.ClientConfig
	log *slog.Logger
	reg *phases.Registry
	ed  *phases.Editor
}

func prepareSchema(ctx context.Context, out io.Writer, token, path string) (*schemaRun, error) {
	cfg, err := config.LoadClient(token)
	if err != nil {
		return nil, err
	}
	log := cliLogger(cfg.LogLevel)

	f, err := readSchemaFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := loadRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ed, reports := replaySchema(f, reg, log)
	printReports(out, len(f.Phases), reports)
	if len(reports) > 0 {
		return nil, errSchemaInvalid
	}
	return &schemaRun{cfg: cfg, log: log, reg: reg, ed: ed}, nil
}

func init() {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Args:  cobra.ExactArgs(0),
		Short: "Check a TOML schema file against the phase type catalog",
	}
	validateToken := addTokenFlag(validateCmd)
	validateFile := validateCmd.Flags().StringP("file", "f", "", "schema file (TOML)")
	if err := validateCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	validateCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		_, err := prepareSchema(cmd.Context(), cmd.OutOrStdout(), *validateToken, *validateFile)
		return err
	}

	pushCmd := &cobra.Command{
		Use:   "push",
		Args:  cobra.ExactArgs(0),
		Short: "Validate a TOML schema file and save it as the tournament schema",
	}
	pushToken := addTokenFlag(pushCmd)
	pushFile := pushCmd.Flags().StringP("file", "f", "", "schema file (TOML)")
	tournamentID := pushCmd.Flags().String("tournament", "", "tournament ID")
	for _, name := range []string{"file", "tournament"} {
		if err := pushCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	pushCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		run, err := prepareSchema(ctx, cmd.OutOrStdout(), *pushToken, *pushFile)
		if err != nil {
			return err
		}

		wire := phases.WireSchema(run.ed.Schema(), run.reg)
		saved, err := newClient(run.cfg).PutSchema(ctx, run.cfg.Token, *tournamentID, wire)
		if err != nil {
			return fmt.Errorf("save schema: %w", err)
		}
		run.log.Info("schema saved",
			slog.String("tournament_id", *tournamentID),
			slog.Int("phases", len(saved.Phases)))
		printSchema(cmd.OutOrStdout(), saved)
		return nil
	}

	schemaCmd.AddCommand(validateCmd, pushCmd)
}
