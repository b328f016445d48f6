package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppg-tools/ppg/internal/assembler"
	"github.com/ppg-tools/ppg/internal/compiler"
	"github.com/ppg-tools/ppg/internal/diagnostics"
	duckdbstore "github.com/ppg-tools/ppg/internal/duckdb"
	"github.com/ppg-tools/ppg/internal/executor"
	"github.com/ppg-tools/ppg/internal/fastaout"
	"github.com/ppg-tools/ppg/internal/gir"
	"github.com/ppg-tools/ppg/internal/logging"
	"github.com/ppg-tools/ppg/internal/mutation"
	"github.com/ppg-tools/ppg/internal/proteome"
	"github.com/ppg-tools/ppg/internal/report"
	"github.com/ppg-tools/ppg/internal/router"
	"github.com/ppg-tools/ppg/internal/vcf"
)

type runFlags struct {
	ref               string
	vcfPath           string
	out               string
	engine            string
	workers           int
	verbose           bool
	stats             bool
	statsDB           string
	writeIntMap       bool
	writeAllProteins  bool
	writeCompressed   bool
	writeSingleThread bool
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile per-sample VCF/BCSQ consequences into edited haplotype protein FASTA",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The config file is loaded only once the command executes, after
			// the flag defaults above were taken; apply it to unset flags now.
			fl := cmd.Flags()
			if !fl.Changed("ref") {
				f.ref = viper.GetString("run.ref")
			}
			if !fl.Changed("vcf") {
				f.vcfPath = viper.GetString("run.vcf")
			}
			if !fl.Changed("out") {
				f.out = orDefault(viper.GetString("run.out"), ".")
			}
			if !fl.Changed("engine") {
				f.engine = orDefault(viper.GetString("run.engine"), "st")
			}
			return runPipeline(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.ref, "ref", viper.GetString("run.ref"), "reference proteome FASTA (required)")
	flags.StringVar(&f.vcfPath, "vcf", viper.GetString("run.vcf"), "input VCF with BCSQ annotations (required)")
	flags.StringVar(&f.out, "out", orDefault(viper.GetString("run.out"), "."), "output directory")
	flags.StringVar(&f.engine, "engine", orDefault(viper.GetString("run.engine"), "st"), "execution backend: st, mt, or gpu")
	flags.IntVar(&f.workers, "workers", viper.GetInt("run.workers"), "MT backend worker cap (0 = unlimited)")
	flags.BoolVar(&f.verbose, "verbose", viper.GetBool("run.verbose"), "verbose structured logging")
	flags.BoolVar(&f.stats, "stats", viper.GetBool("run.stats"), "write summary.tsv and the three report tables")
	flags.StringVar(&f.statsDB, "stats-db", viper.GetString("run.stats_db"), "optional DuckDB path to persist mutation records")
	flags.BoolVar(&f.writeIntMap, "write-int-map", false, "dump each sample's intermediate annotation map as JSON")
	flags.BoolVar(&f.writeAllProteins, "write-all-proteins", false, "also emit unmodified reference transcripts")
	flags.BoolVar(&f.writeCompressed, "write-compressed", false, "gzip FASTA output")
	flags.BoolVar(&f.writeSingleThread, "write-single-thread", false, "force the single-threaded backend regardless of --engine")

	return cmd
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func runPipeline(f *runFlags) error {
	if f.ref == "" || f.vcfPath == "" {
		return &usageError{fmt.Errorf("--ref and --vcf are required")}
	}
	if f.writeSingleThread {
		f.engine = "st"
	}
	switch f.engine {
	case "st", "mt", "gpu":
	default:
		return &usageError{fmt.Errorf("unknown --engine %q (want st, mt, or gpu)", f.engine)}
	}

	log, err := logging.New(logging.Config{Debug: f.verbose})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	diag := diagnostics.New()

	if err := os.MkdirAll(f.out, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ref, err := proteome.Load(f.ref)
	if err != nil {
		return fmt.Errorf("load reference proteome: %w", err)
	}
	log.Info("loaded reference proteome", zap.Int("transcripts", ref.Count()))

	routes, sampleOrder, err := routeVariants(f.vcfPath, log)
	if err != nil {
		return err
	}

	acc := report.NewAccumulator()
	summary := report.NewSummary(acc)

	var store *duckdbstore.Store
	if f.statsDB != "" {
		store, err = duckdbstore.Open(f.statsDB)
		if err != nil {
			return fmt.Errorf("open stats db: %w", err)
		}
		defer store.Close()
	}

	// Phase 1: compile every sample's two haplotypes into assembled GIRs
	// before touching an execution backend, so the MT backend's
	// sample-level parallelism (spec.md §5) has the whole batch to fan
	// out over rather than one sample at a time.
	compiled := make([]executor.Sample, 0, len(sampleOrder))
	routeBySample := make(map[string]*router.SampleRoute, len(sampleOrder))
	for _, sampleName := range sampleOrder {
		route := routes[sampleName]
		route.Finalize()
		routeBySample[sampleName] = route

		hap1Frags, hap1Events := compileHaplotype(sampleName, 1, route.Hap1, ref, diag, log, summary)
		hap2Frags, hap2Events := compileHaplotype(sampleName, 2, route.Hap2, ref, diag, log, summary)
		for _, e := range hap1Events {
			acc.Record(e)
		}
		for _, e := range hap2Events {
			acc.Record(e)
		}

		compiled = append(compiled, executor.Sample{
			Name: sampleName,
			Hap1: assembler.Assemble(hap1Frags),
			Hap2: assembler.Assemble(hap2Frags),
		})
	}

	// summary was created before any event was recorded; fill in its
	// totals now that every sample has been compiled.
	totals := report.NewSummary(acc)
	summary.TotalMutations = totals.TotalMutations
	summary.KindTotals = totals.KindTotals

	// Phase 2: execute and write output.
	results, err := executeBatch(f.engine, f.workers, compiled, log)
	if err != nil {
		return fmt.Errorf("execute samples: %w", err)
	}

	for i, sampleResult := range results {
		sampleName := compiled[i].Name
		route := routeBySample[sampleName]

		if err := writeSampleFASTA(f, sampleName, ref, route, compiled[i].Hap1, compiled[i].Hap2, sampleResult.Hap1Bytes, sampleResult.Hap2Bytes); err != nil {
			log.Warn("writing fasta failed", zap.String("sample", sampleName), zap.Error(err))
		}

		if f.writeIntMap {
			if err := report.WriteSampleJSON(f.out, sampleName, mergedAnnotations(compiled[i].Hap1, compiled[i].Hap2), acc.SampleSummary(sampleName)); err != nil {
				log.Warn("writing intermediate annotation map failed", zap.String("sample", sampleName), zap.Error(err))
			}
		}
	}

	if store != nil {
		if err := acc.PersistToDuckDB(store); err != nil {
			return fmt.Errorf("persist stats db: %w", err)
		}
	}

	if f.verbose {
		summary.WriteText(os.Stderr)
	}
	if f.stats {
		if err := acc.WriteReports(f.out); err != nil {
			return fmt.Errorf("write report tables: %w", err)
		}
		if err := summary.WriteTSV(f.out); err != nil {
			return fmt.Errorf("write summary.tsv: %w", err)
		}
	}

	return nil
}

// routeVariants reads the whole VCF, parsing each record's BCSQ effects
// and accumulating every sample's routed mutations across records.
func routeVariants(path string, log *zap.Logger) (map[string]*router.SampleRoute, []string, error) {
	parser, err := vcf.NewParser(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open vcf: %w", err)
	}
	defer parser.Close()

	if !parser.HasBCSQAnnotation() {
		log.Warn("vcf header declares no BCSQ INFO field; every record will route zero mutations", zap.String("path", path))
	}

	sampleNames := parser.SampleNames()
	routes := make(map[string]*router.SampleRoute, len(sampleNames))
	order := make([]string, 0, len(sampleNames))
	for _, s := range sampleNames {
		routes[s] = &router.SampleRoute{}
		order = append(order, s)
	}

	for {
		v, err := parser.Next()
		if err != nil {
			return nil, nil, fmt.Errorf("read vcf record at line %d: %w", parser.LineNumber(), err)
		}
		if v == nil {
			break
		}

		raw := v.BCSQEffects()
		if raw == nil {
			continue
		}

		effects := make([]mutation.Mutation, 0, len(raw))
		for _, field := range raw {
			m, err := mutation.ParseBCSQ(field)
			if err != nil {
				log.Warn("skipping unparseable BCSQ effect", zap.String("chrom", v.Chrom), zap.Int64("pos", v.Pos), zap.Error(err))
				continue
			}
			effects = append(effects, m)
		}
		if len(effects) == 0 {
			continue
		}

		for idx, sampleName := range sampleNames {
			bm, ok := v.SampleBitmask("BCSQ", idx)
			if !ok {
				continue
			}
			sampleRoute, err := router.RouteSample(sampleName, effects, bm)
			if err != nil {
				log.Warn("skipping sample record", zap.String("sample", sampleName), zap.Error(err))
				continue
			}
			router.MergeInto(routes[sampleName], sampleRoute)
		}
	}

	return routes, order, nil
}

// compileHaplotype compiles every transcript of one haplotype, skipping
// (and logging) transcripts that fail to compile or whose reference
// sequence is missing, per spec.md §7's per-record/per-transcript skip
// design.
func compileHaplotype(sampleName string, haplotype int, hap router.Haplotype, ref *proteome.Reference, diag diagnostics.DiagConfig, log *zap.Logger, summary *report.Summary) ([]gir.Fragment, []report.Event) {
	fragments := make([]gir.Fragment, 0, len(hap.TranscriptOrder))
	events := make([]report.Event, 0)

	for _, transcriptID := range hap.TranscriptOrder {
		at := hap.Transcripts[transcriptID]
		refSeq, ok := ref.Get(transcriptID)
		if !ok {
			log.Warn("no reference sequence for transcript, skipping", zap.String("transcript", transcriptID))
			summary.RecordSkip(transcriptID, "missing reference sequence")
			continue
		}

		frag, err := compiler.Compile(*at, refSeq, diag)
		if err != nil {
			log.Warn("transcript compilation failed, skipping",
				zap.String("sample", sampleName), zap.Int("haplotype", haplotype),
				zap.String("transcript", transcriptID), zap.Error(err))
			summary.RecordSkip(transcriptID, err.Error())
			continue
		}
		fragments = append(fragments, frag)

		for _, m := range at.Mutations {
			events = append(events, report.Event{
				Sample:       sampleName,
				Haplotype:    haplotype,
				TranscriptID: transcriptID,
				Kind:         m.Kind,
				RefPos:       m.RefPos,
				MutPos:       m.MutPos,
				Opcode:       compiler.KindOpcode(m.Kind),
				EditedLength: frag.ResultLength,
			})
		}
	}
	return fragments, events
}

// executeBatch runs every sample through the chosen backend. The three
// backends are required to produce byte-identical output for the same
// input GIRs (spec.md §8 backend-equivalence invariant); mt is the only
// one that actually parallelizes across samples.
func executeBatch(engine string, workers int, samples []executor.Sample, log *zap.Logger) ([]executor.SampleResult, error) {
	switch engine {
	case "mt":
		return executor.ExecuteMT(samples, workers, log)
	case "gpu":
		results := make([]executor.SampleResult, len(samples))
		for i, s := range samples {
			h1, err := executor.ExecuteGPU(s.Hap1, log)
			if err != nil {
				return nil, fmt.Errorf("sample %s haplotype 1: %w", s.Name, err)
			}
			h2, err := executor.ExecuteGPU(s.Hap2, log)
			if err != nil {
				return nil, fmt.Errorf("sample %s haplotype 2: %w", s.Name, err)
			}
			results[i] = executor.SampleResult{Name: s.Name, Hap1Bytes: h1, Hap2Bytes: h2}
		}
		return results, nil
	default:
		results := make([]executor.SampleResult, len(samples))
		for i, s := range samples {
			h1, err := executor.ExecuteST(s.Hap1, log)
			if err != nil {
				return nil, fmt.Errorf("sample %s haplotype 1: %w", s.Name, err)
			}
			h2, err := executor.ExecuteST(s.Hap2, log)
			if err != nil {
				return nil, fmt.Errorf("sample %s haplotype 2: %w", s.Name, err)
			}
			results[i] = executor.SampleResult{Name: s.Name, Hap1Bytes: h1, Hap2Bytes: h2}
		}
		return results, nil
	}
}

func writeSampleFASTA(f *runFlags, sampleName string, ref *proteome.Reference, route *router.SampleRoute, hap1, hap2 gir.GIR, hap1Bytes, hap2Bytes []byte) error {
	ext := ".fasta"
	if f.writeCompressed {
		ext += ".gz"
	}
	path := filepath.Join(f.out, sampleName+ext)

	w, err := fastaout.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	touched := make(map[string]bool)
	for _, id := range route.Hap1.TranscriptOrder {
		touched[id] = true
	}
	for _, id := range route.Hap2.TranscriptOrder {
		touched[id] = true
	}

	for _, id := range route.Hap1.TranscriptOrder {
		span, ok := hap1.Annotations[id]
		if !ok {
			continue // transcript failed to compile; already logged and counted as skipped
		}
		if err := w.WriteRecord(sampleName, fastaout.Record{TranscriptID: id, Haplotype: 1, Sequence: string(hap1Bytes[span[0]:span[1]])}); err != nil {
			return err
		}
	}
	for _, id := range route.Hap2.TranscriptOrder {
		span, ok := hap2.Annotations[id]
		if !ok {
			continue
		}
		if err := w.WriteRecord(sampleName, fastaout.Record{TranscriptID: id, Haplotype: 2, Sequence: string(hap2Bytes[span[0]:span[1]])}); err != nil {
			return err
		}
	}

	if f.writeAllProteins {
		for id := range touched {
			if _, ok := route.Hap1.Transcripts[id]; !ok {
				if seq, ok := ref.Get(id); ok {
					if err := w.WriteRecord(sampleName, fastaout.Record{TranscriptID: id, Haplotype: 1, Sequence: seq, Unmodified: true}); err != nil {
						return err
					}
				}
			}
			if _, ok := route.Hap2.Transcripts[id]; !ok {
				if seq, ok := ref.Get(id); ok {
					if err := w.WriteRecord(sampleName, fastaout.Record{TranscriptID: id, Haplotype: 2, Sequence: seq, Unmodified: true}); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

func mergedAnnotations(hap1, hap2 gir.GIR) map[string][2]int {
	out := make(map[string][2]int, len(hap1.Annotations)+len(hap2.Annotations))
	for id, span := range hap1.Annotations {
		out["hap1:"+id] = span
	}
	for id, span := range hap2.Annotations {
		out["hap2:"+id] = span
	}
	return out
}
