package task

import (
	"fmt"
	"log/slog"
	"strings"

	"rtk/internal/alto"
	"rtk/internal/command"
	"rtk/internal/config"
	"rtk/internal/fetch"
	"rtk/internal/iiif"
	"rtk/internal/inputs"
	"rtk/internal/pdf"
	"rtk/internal/services"
)

// Deps carries the collaborators task variants need.
type Deps struct {
	Fetcher   fetch.Fetcher
	Resolver  Resolver
	Runner    command.Runner
	Logger    *slog.Logger
	Progress  ProgressFunc
	PageCount func(path string) (int, error)
}

// Build constructs the task declared by def over refs. Configuration
// problems, such as a command template without an output placeholder, are
// reported here rather than per item.
func Build(def config.Task, refs []inputs.Ref, deps Deps) (*Task, error) {
	variant, policy, err := buildVariant(def, deps)
	if err != nil {
		return nil, err
	}
	if err := checkDisjoint(def, variant, refs); err != nil {
		return nil, err
	}
	opts := []Option{
		WithName(def.Name),
		WithWorkers(def.Workers),
		WithLogger(deps.Logger),
		WithProgress(deps.Progress),
	}
	if policy != nil {
		opts = append(opts, policy)
	}
	return New(def.Kind, variant, refs, opts...), nil
}

// outputKey returns the path variant writes for ref, or an empty string
// for variants that write nothing of their own.
func outputKey(variant Variant, ref inputs.Ref) string {
	switch v := variant.(type) {
	case *Download:
		return v.Target(ref)
	case *Manifest:
		return v.IndexPath(ref)
	case *Command:
		return v.Output(ref)
	case *ExtractZones:
		return v.Output(ref)
	case *PDFExtract:
		return pdf.PageDir(ref.URI, v.OutputDir)
	default:
		return ""
	}
}

// checkDisjoint rejects input sets in which two distinct refs would write
// the same output.
func checkDisjoint(def config.Task, variant Variant, refs []inputs.Ref) error {
	owners := make(map[string]inputs.Ref, len(refs))
	for _, ref := range refs {
		key := outputKey(variant, ref)
		if key == "" {
			continue
		}
		if prev, ok := owners[key]; ok && prev != ref {
			return configErr(def, fmt.Sprintf("%s and %s both write %s", prev, ref, key))
		}
		owners[key] = ref
	}
	return nil
}

func buildVariant(def config.Task, deps Deps) (Variant, Option, error) {
	runner := deps.Runner
	if runner == nil {
		runner = command.ExecRunner{}
	}

	switch def.Kind {
	case config.KindDownload:
		if deps.Fetcher == nil {
			return nil, nil, configErr(def, "no fetcher available")
		}
		if def.MaxWidth > 0 && def.MaxHeight > 0 {
			return nil, nil, configErr(def, "max_width and max_height are mutually exclusive")
		}
		d := &Download{
			Fetcher:   deps.Fetcher,
			Prefix:    def.OutputPrefix,
			MaxWidth:  def.MaxWidth,
			MaxHeight: def.MaxHeight,
		}
		if ds := def.Downstream; ds != nil && ds.Ext != "" {
			var next Oracle = Exists
			if ds.CheckContent {
				next = ContentValidated(alto.Threshold{MinLines: ds.MinLines, Ratio: ds.MinRatio})
			}
			d.Oracle = Chained(Exists, Downstream(ds.Ext, next))
		}
		return d, nil, nil

	case config.KindManifest:
		resolver := deps.Resolver
		if resolver == nil {
			if deps.Fetcher == nil {
				return nil, nil, configErr(def, "no fetcher available")
			}
			resolver = iiif.NewResolver(deps.Fetcher)
		}
		if strings.TrimSpace(def.OutputDir) == "" {
			return nil, nil, configErr(def, "output_dir must be set")
		}
		return &Manifest{Resolver: resolver, OutputDir: def.OutputDir}, nil, nil

	case config.KindCommand, config.KindYALTAi, config.KindKraken:
		raw, err := commandLine(def)
		if err != nil {
			return nil, nil, err
		}
		tpl, err := command.ParseTemplate(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("task %q: %w", def.Name, err)
		}
		c := &Command{Template: tpl, Runner: runner, Ext: outputExt(def)}
		if def.CheckContent {
			c.Oracle = ContentValidated(alto.Threshold{MinLines: def.MinLines, Ratio: def.MinRatio})
		}
		if def.FailFast {
			return c, WithFailFast(), nil
		}
		return c, WithTolerance(), nil

	case config.KindALTOCleanup:
		return ALTOCleanup{}, WithTolerance(), nil

	case config.KindExtractZones:
		if len(def.Zones) == 0 {
			return nil, nil, configErr(def, "zones must list at least one zone label")
		}
		return &ExtractZones{Zones: append([]string(nil), def.Zones...)}, nil, nil

	case config.KindClear:
		return Clear{}, WithTolerance(), nil

	case config.KindPDFExtract:
		raw := def.Command
		if raw == "" {
			raw = DefaultPageTemplate
		}
		tpl, err := command.ParseTemplate(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("task %q: %w", def.Name, err)
		}
		if !tpl.HasPage() {
			return nil, nil, configErr(def, "page command needs a %page placeholder")
		}
		if def.StartOn < 0 {
			return nil, nil, configErr(def, "start_on must not be negative")
		}
		p := &PDFExtract{
			Template:  tpl,
			Runner:    runner,
			OutputDir: def.OutputDir,
			StartOn:   def.StartOn,
			PageCount: deps.PageCount,
		}
		if def.FailFast {
			return p, WithFailFast(), nil
		}
		return p, nil, nil

	default:
		return nil, nil, configErr(def, fmt.Sprintf("unsupported kind %q", def.Kind))
	}
}

// commandLine returns the template for generic commands and assembles it
// for the YALTAi and Kraken presets.
func commandLine(def config.Task) (string, error) {
	switch def.Kind {
	case config.KindYALTAi:
		model, err := modelPath(def, def.Model)
		if err != nil {
			return "", err
		}
		line := fmt.Sprintf("%s kraken --alto -i %s %s --device %s segment -y %s",
			command.Quote(orDefault(def.Binary, "yaltai")), command.InputPlaceholder, command.OutputPlaceholder,
			command.Quote(orDefault(def.Device, "cpu")), model)
		if def.LineModel != "" {
			lineModel, err := modelPath(def, def.LineModel)
			if err != nil {
				return "", err
			}
			line += " -i " + lineModel
		}
		return line, nil
	case config.KindKraken:
		model, err := modelPath(def, def.Model)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s --alto --device %s -i %s %s -f xml ocr -m %s",
			command.Quote(orDefault(def.Binary, "kraken")), command.Quote(orDefault(def.Device, "cpu")),
			command.InputPlaceholder, command.OutputPlaceholder, model), nil
	default:
		if strings.TrimSpace(def.Command) == "" {
			return "", configErr(def, "command must be set")
		}
		return def.Command, nil
	}
}

func modelPath(def config.Task, model string) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", configErr(def, "model must be set")
	}
	expanded, err := config.ExpandPath(model)
	if err != nil {
		return "", configErr(def, err.Error())
	}
	if strings.Contains(expanded, command.InputPlaceholder) {
		return "", configErr(def, fmt.Sprintf("model path %q must not contain %s", expanded, command.InputPlaceholder))
	}
	return command.Quote(expanded), nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func outputExt(def config.Task) string {
	if ext := strings.TrimPrefix(def.OutputExt, "."); ext != "" {
		return ext
	}
	return "xml"
}

func configErr(def config.Task, message string) error {
	name := def.Name
	if name == "" {
		name = def.Kind
	}
	return services.Wrap(services.ErrConfiguration, "task", "build "+name, message, nil)
}

// Binary returns the external program def runs, or an empty string for
// kinds handled in-process.
func Binary(def config.Task) (string, error) {
	var raw string
	switch def.Kind {
	case config.KindCommand, config.KindYALTAi, config.KindKraken:
		line, err := commandLine(def)
		if err != nil {
			return "", err
		}
		raw = line
	case config.KindPDFExtract:
		raw = def.Command
		if raw == "" {
			raw = DefaultPageTemplate
		}
	default:
		return "", nil
	}
	tpl, err := command.ParseTemplate(raw)
	if err != nil {
		return "", fmt.Errorf("task %q: %w", def.Name, err)
	}
	return tpl.Binary(), nil
}
