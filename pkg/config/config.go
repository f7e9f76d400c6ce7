// Package config resolves what the monitor watches and how: the target
// directory, the expected experiment matrix and the loop and server
// settings. Precedence is flags, then the matrix file, then environment,
// then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/justin-oleary/simwatch/pkg/scan"
)

const (
	DefaultOutput      = "experiment_status.html"
	DefaultPort        = 8080
	DefaultFormat      = "html"
	DefaultProcessName = "gem5"

	// batchMarker in a directory path means the tree holds a full
	// multi-benchmark batch, so every known benchmark is expected.
	batchMarker = "all_benchmarks"
)

// KnownBenchmarks is the benchmark suite a full batch runs.
var KnownBenchmarks = []string{
	"mobilenetv2", "mobilenetv2_35", "mobilenetv2_75",
	"lenet_a", "lenet_b", "lenet_c",
	"bfs", "fft", "gemm", "md_grid", "md_knn", "nw",
	"spmv", "stencil2d", "stencil3d", "mergesort",
}

// Options is the raw, unvalidated input from flags and the environment.
type Options struct {
	Dir        string
	Latest     bool
	BaseDir    string
	Watch      bool
	Interval   time.Duration
	Output     string
	Format     string
	Benchmarks string // comma-separated
	Latencies  string // comma-separated
	MatrixFile string
	Title      string

	Serve       bool
	Port        int
	MetricsAddr string
	ProcessName string

	// Known is the suite expected for batch directories. Nil means
	// KnownBenchmarks.
	Known []string
}

// Defaults returns Options filled from the environment.
func Defaults() Options {
	return Options{
		BaseDir:     BaseDir(),
		Interval:    Interval(),
		Output:      DefaultOutput,
		Format:      DefaultFormat,
		Port:        DefaultPort,
		ProcessName: DefaultProcessName,
	}
}

// Config is the resolved, validated configuration. It is not modified after
// Resolve returns.
type Config struct {
	Dir        string // absolute
	OutputPath string
	Format     string
	Title      string
	Watch      bool
	Interval   time.Duration

	Matrix scan.Matrix
	// AutoLatencies is set when no latencies were configured and they are
	// detected from the tree every cycle instead.
	AutoLatencies bool

	Serve       bool
	Port        int
	MetricsAddr string
	ProcessName string
}

// ServeAddr is the file server listen address.
func (c Config) ServeAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// MatrixFile is the YAML form of the expected matrix.
//
//	title: nightly validation sweep
//	benchmarks: [bfs, gemm]
//	latencies: [0, 100, 1000]
type MatrixFile struct {
	Title      string   `yaml:"title"`
	Benchmarks []string `yaml:"benchmarks"`
	Latencies  []int64  `yaml:"latencies"`
}

// LoadMatrixFile decodes path. Unknown keys are rejected so a typo does not
// silently drop an expectation.
func LoadMatrixFile(path string) (MatrixFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return MatrixFile{}, &ResolveError{Cause: ErrBadMatrixFile, Subject: path, Detail: err}
	}
	defer f.Close()

	var mf MatrixFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil && !errors.Is(err, io.EOF) {
		return MatrixFile{}, &ResolveError{Cause: ErrBadMatrixFile, Subject: path, Detail: err}
	}
	for _, l := range mf.Latencies {
		if l < 0 {
			return MatrixFile{}, &ResolveError{Cause: ErrBadLatency, Subject: strconv.FormatInt(l, 10)}
		}
	}
	return mf, nil
}

// Resolve validates o and produces the Config.
func Resolve(o Options) (Config, error) {
	dir, err := targetDir(o)
	if err != nil {
		return Config{}, err
	}
	if o.Interval <= 0 {
		return Config{}, &ResolveError{Cause: ErrBadInterval, Subject: o.Interval.String()}
	}

	c := Config{
		Dir:         dir,
		OutputPath:  filepath.Join(dir, orDefault(o.Output, DefaultOutput)),
		Format:      orDefault(o.Format, DefaultFormat),
		Title:       o.Title,
		Watch:       o.Watch,
		Interval:    o.Interval,
		Serve:       o.Serve,
		Port:        o.Port,
		MetricsAddr: o.MetricsAddr,
		ProcessName: orDefault(o.ProcessName, DefaultProcessName),
	}
	if c.Port <= 0 {
		c.Port = DefaultPort
	}

	var mf MatrixFile
	if o.MatrixFile != "" {
		if mf, err = LoadMatrixFile(o.MatrixFile); err != nil {
			return Config{}, err
		}
	}
	if c.Title == "" {
		c.Title = mf.Title
	}

	switch {
	case o.Benchmarks != "":
		c.Matrix.Benchmarks = ParseList(o.Benchmarks)
	case len(mf.Benchmarks) > 0:
		c.Matrix.Benchmarks = mf.Benchmarks
	case strings.Contains(dir, batchMarker):
		known := o.Known
		if known == nil {
			known = KnownBenchmarks
		}
		c.Matrix.Benchmarks = append([]string(nil), known...)
	}

	switch {
	case o.Latencies != "":
		if c.Matrix.Latencies, err = ParseLatencies(o.Latencies); err != nil {
			return Config{}, err
		}
	case len(mf.Latencies) > 0:
		c.Matrix.Latencies = mf.Latencies
	default:
		c.AutoLatencies = true
	}
	return c, nil
}

func targetDir(o Options) (string, error) {
	dir := o.Dir
	if o.Latest || dir == "" {
		base := orDefault(o.BaseDir, DefaultBaseDir)
		latest, err := LatestDir(base)
		if err != nil {
			return "", err
		}
		dir = latest
	}

	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return "", &ResolveError{Cause: ErrDirNotFound, Subject: dir}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &ResolveError{Cause: ErrDirNotFound, Subject: dir, Detail: err}
	}
	return abs, nil
}

// LatestDir returns the most recently created subdirectory of base, by
// inode change time. Ties go to the lexically greater name.
func LatestDir(base string) (string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &ResolveError{Cause: ErrNoOutputDir, Subject: base}
		}
		return "", &ResolveError{Cause: ErrNoOutputDir, Subject: base, Detail: err}
	}

	var (
		best     string
		bestTime time.Time
	)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(base, e.Name())
		ct, err := changeTime(path)
		if err != nil {
			continue
		}
		if best == "" || ct.After(bestTime) || (ct.Equal(bestTime) && path > best) {
			best, bestTime = path, ct
		}
	}
	if best == "" {
		return "", &ResolveError{Cause: ErrNoOutputDir, Subject: base}
	}
	return best, nil
}

// ParseList splits a comma-separated list, trimming blanks and dropping
// empty items.
func ParseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseLatencies parses a comma-separated list of non-negative integers.
func ParseLatencies(s string) ([]int64, error) {
	items := ParseList(s)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		v, err := strconv.ParseInt(item, 10, 64)
		if err != nil || v < 0 {
			return nil, &ResolveError{Cause: ErrBadLatency, Subject: item}
		}
		out = append(out, v)
	}
	return out, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// String is a one-line summary for the startup log.
func (c Config) String() string {
	lat := "auto"
	if !c.AutoLatencies {
		lat = fmt.Sprint(c.Matrix.Latencies)
	}
	return fmt.Sprintf("dir=%s output=%s benchmarks=%d latencies=%s", c.Dir, c.OutputPath,
		len(c.Matrix.Benchmarks), lat)
}
