package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/hupe1980/ixcoll"
	"github.com/hupe1980/ixcoll/codec"
	"github.com/hupe1980/ixcoll/config"
	"github.com/hupe1980/ixcoll/pathexpr"
	"github.com/hupe1980/ixcoll/prom"
)

type globalFlags struct {
	config  string
	data    string
	verbose bool
}

// session is a loaded config plus the collection built from it.
type session struct {
	cfg      *config.Config
	codec    codec.Codec
	coll     *ixcoll.Collection[string, config.Record]
	registry *prometheus.Registry
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "ixq",
		Short:         "Query JSON records through declaratively configured indexes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.config, "config", "c", "ixq.yaml", "index config file")
	root.PersistentFlags().StringVarP(&g.data, "data", "d", "", "records file (JSON array or one object per line)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log mutations and diagnostics to stderr")
	_ = root.MarkPersistentFlagRequired("data")

	root.AddCommand(newQueryCmd(&g), newRelatedCmd(&g), newStatsCmd(&g))
	return root
}

func (g *globalFlags) open() (*session, error) {
	cfg, err := config.LoadFile(g.config)
	if err != nil {
		return nil, err
	}

	logger := ixcoll.NoopLogger()
	if g.verbose {
		logger = ixcoll.NewTextLogger(slog.LevelDebug)
	}
	reg := prometheus.NewRegistry()

	coll, err := config.New[config.Record](cfg,
		ixcoll.WithLogger(logger),
		ixcoll.WithMetricsCollector(prom.New(reg)),
	)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, codec: cfg.CodecOrDefault(), coll: coll, registry: reg}
	records, err := s.readRecords(g.data)
	if err != nil {
		return nil, err
	}
	if err := s.assignIDs(records); err != nil {
		return nil, err
	}
	coll.AddMany(records)
	return s, nil
}

func (s *session) readRecords(path string) ([]config.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := codec.DecodeRecords(s.codec, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// assignIDs gives records without an id a random one. Only a top-level id
// field can be filled in.
func (s *session) assignIDs(records []config.Record) error {
	p, err := pathexpr.Parse(s.cfg.IDPath)
	if err != nil {
		return err
	}
	for i, r := range records {
		if v, ok := p.Lookup(r); ok && v != nil {
			continue
		}
		if len(p) != 1 || p[0].IsIndex {
			return fmt.Errorf("record %d has no id at %q", i, s.cfg.IDPath)
		}
		r[p[0].Field] = uuid.NewString()
	}
	return nil
}

func (s *session) print(cmd *cobra.Command, v any) error {
	out, err := codec.Pretty(s.codec, v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func newQueryCmd(g *globalFlags) *cobra.Command {
	var (
		index string
		key   string
		arg   string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Look up a key or call a stored query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			kind, ok := s.coll.Kind(index)
			if !ok {
				return &ixcoll.UnknownIndexError{Index: index, Op: "query"}
			}

			var result any
			switch kind {
			case ixcoll.KindSingle, ixcoll.KindMulti:
				if !cmd.Flags().Changed("key") {
					return fmt.Errorf("index %q needs --key", index)
				}
				ic, _ := s.cfg.Index(index)
				k, err := ic.ParseKey(key)
				if err != nil {
					return err
				}
				if kind == ixcoll.KindSingle {
					result, err = s.coll.By(index, k)
				} else {
					result, err = s.coll.Where(index, k)
				}
				if err != nil {
					return err
				}
			case ixcoll.KindDerived:
				if result, err = s.coll.GetDerived(index); err != nil {
					return err
				}
				if counts, ok := result.(map[any]int); ok {
					result = stringKeys(counts)
				}
			case ixcoll.KindDynamic:
				if result, err = s.coll.Query(index, arg); err != nil {
					return err
				}
			}
			return s.print(cmd, result)
		},
	}
	cmd.Flags().StringVarP(&index, "index", "i", "", "index name")
	cmd.Flags().StringVarP(&key, "key", "k", "", "lookup key for single and multi indexes")
	cmd.Flags().StringVarP(&arg, "arg", "a", "", "argument for dynamic indexes")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func newRelatedCmd(g *globalFlags) *cobra.Command {
	var (
		source string
		path   string
	)
	cmd := &cobra.Command{
		Use:   "related",
		Short: "Resolve the ids found at a path of other records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			if _, err := pathexpr.Parse(path); err != nil {
				return err
			}
			sources, err := s.readRecords(source)
			if err != nil {
				return err
			}
			anys := make([]any, len(sources))
			for i, r := range sources {
				anys[i] = stringIDs(r)
			}
			return s.print(cmd, s.coll.Related(anys, path))
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "file with the records holding the ids")
	cmd.Flags().StringVarP(&path, "path", "p", "", "path of the id or id list in each source record")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

// stringIDs rewrites numbers to the string form used for collection ids.
func stringIDs(v any) any {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = stringIDs(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = stringIDs(e)
		}
		return out
	default:
		return v
	}
}

// stringKeys makes count maps encodable as JSON objects.
func stringKeys(counts map[any]int) map[string]int {
	out := make(map[string]int, len(counts))
	for k, n := range counts {
		if f, ok := k.(float64); ok {
			out[strconv.FormatFloat(f, 'f', -1, 64)] = n
			continue
		}
		out[fmt.Sprint(k)] = n
	}
	return out
}

type indexStats struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Keys int    `json:"keys,omitempty"`
}

type stats struct {
	Records int          `json:"records"`
	Indexes []indexStats `json:"indexes"`
}

func newStatsCmd(g *globalFlags) *cobra.Command {
	var metrics bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the loaded collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			st := stats{Records: s.coll.Len()}
			for _, info := range s.coll.Indexes() {
				st.Indexes = append(st.Indexes, indexStats{Name: info.Name, Kind: info.Kind.String(), Keys: info.Keys})
			}
			if err := s.print(cmd, st); err != nil {
				return err
			}
			if !metrics {
				return nil
			}
			families, err := s.registry.Gather()
			if err != nil {
				return err
			}
			var errs []error
			for _, mf := range families {
				if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), mf); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&metrics, "metrics", false, "also print the load metrics in Prometheus text format")
	return cmd
}
