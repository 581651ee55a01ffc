package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/annomerge/pkg/constants"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/stores"
)

// Parameter keys. Each is also a flag name, a key in the --params file and,
// upper-cased with dashes as underscores, an ANNOMERGE_ environment variable.
const (
	keySystemOutput         = "system-output"
	keySystemOutputsList    = "system-outputs-list"
	keyAnnotationStore      = "annotation-store"
	keyAnnotationStoresList = "annotation-stores-list"
	keySystemFormat         = "system-format"
	keyAnnotationFormat     = "annotation-format"
	keyBestOnly             = "best-only"
	keyRestrictTo           = "restrict-to"
	keyParallelism          = "parallelism"
	keyIsolateFailures      = "isolate-failures"
	keyDryRun               = "dry-run"
	keyCacheTTL             = "cache-ttl"
	keyMetricsTextfile      = "metrics-textfile"
	keyParams               = "params"
)

// Defaults seeds flag defaults from the application config.
type Defaults struct {
	SystemFormat     string
	AnnotationFormat string
	CacheTTL         time.Duration
}

// params is one fully resolved import run.
type params struct {
	SystemOutputs    []string
	AnnotationStores []string
	SystemFormat     stores.Format
	AnnotationFormat stores.Format
	BestOnly         bool
	RestrictTo       string
	Parallelism      int
	IsolateFailures  bool
	DryRun           bool
	CacheTTL         time.Duration
	MetricsTextfile  string

	// Warnings collects non-fatal notes raised while resolving, such as a
	// single location shadowing a list.
	Warnings []string
}

func addFlags(flags *pflag.FlagSet, d Defaults) {
	flags.String(keySystemOutput, "", "system output store location")
	flags.String(keySystemOutputsList, "", "file listing system output store locations, one per line")
	flags.String(keyAnnotationStore, "", "annotation store location")
	flags.String(keyAnnotationStoresList, "", "file listing annotation store locations, one per line")
	flags.String(keySystemFormat, orDefault(d.SystemFormat), "system output format: "+formatList())
	flags.String(keyAnnotationFormat, orDefault(d.AnnotationFormat), "annotation store format: "+formatList())
	flags.Bool(keyBestOnly, true, "import only the answer the scorer would select")
	flags.String(keyRestrictTo, "", "file listing the document ids to import")
	flags.Int(keyParallelism, 1, "annotation stores merged concurrently per document")
	flags.Bool(keyIsolateFailures, false, "keep importing into the other stores when one fails")
	flags.Bool(keyDryRun, false, "report what would be added without writing")
	flags.Duration(keyCacheTTL, d.CacheTTL, "cache annotation reads for this long (0 disables)")
	flags.String(keyMetricsTextfile, "", "write prometheus metrics to this file")
	flags.String(keyParams, "", "YAML file holding any of these parameters")
}

// newViper layers flags over ANNOMERGE_* environment variables over the
// optional parameter file.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.NewConfigError("import", "cannot bind flags", err)
	}

	if file := v.GetString(keyParams); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("import", "cannot read parameter file "+file, err)
		}
	}
	return v, nil
}

// resolveParams validates the parameters and loads the location lists. It
// touches no store.
func resolveParams(v *viper.Viper) (*params, error) {
	p := &params{
		BestOnly:        v.GetBool(keyBestOnly),
		RestrictTo:      v.GetString(keyRestrictTo),
		Parallelism:     v.GetInt(keyParallelism),
		IsolateFailures: v.GetBool(keyIsolateFailures),
		DryRun:          v.GetBool(keyDryRun),
		CacheTTL:        v.GetDuration(keyCacheTTL),
		MetricsTextfile: v.GetString(keyMetricsTextfile),
	}

	var err error
	if p.SystemFormat, err = stores.ParseFormat(v.GetString(keySystemFormat)); err != nil {
		return nil, err
	}
	if p.AnnotationFormat, err = stores.ParseFormat(v.GetString(keyAnnotationFormat)); err != nil {
		return nil, err
	}
	if p.Parallelism < 1 || p.Parallelism > constants.MaxParallelism {
		return nil, errors.NewConfigError("import", "parallelism must be between 1 and "+strconv.Itoa(constants.MaxParallelism), nil)
	}
	if p.CacheTTL < 0 {
		return nil, errors.NewConfigError("import", "cache-ttl cannot be negative", nil)
	}

	if p.SystemOutputs, err = locations(v, keySystemOutput, keySystemOutputsList, p); err != nil {
		return nil, err
	}
	if p.AnnotationStores, err = locations(v, keyAnnotationStore, keyAnnotationStoresList, p); err != nil {
		return nil, err
	}
	return p, nil
}

// locations resolves a single-location key and its list-file counterpart.
// The single location wins when both are given.
func locations(v *viper.Viper, single, list string, p *params) ([]string, error) {
	location := v.GetString(single)
	listFile := v.GetString(list)
	switch {
	case location != "":
		if listFile != "" {
			p.Warnings = append(p.Warnings, "both --"+single+" and --"+list+" given, using --"+single)
		}
		return []string{location}, nil
	case listFile != "":
		locs, err := stores.LoadLocations(listFile)
		if err != nil {
			return nil, err
		}
		if len(locs) == 0 {
			return nil, errors.NewConfigError("import", listFile+" lists no locations", nil)
		}
		return locs, nil
	default:
		return nil, errors.NewConfigError("import", "one of --"+single+" or --"+list+" is required", nil)
	}
}

func orDefault(format string) string {
	if format == "" {
		return constants.DefaultStoreFormat
	}
	return format
}

func formatList() string {
	names := make([]string, 0, len(stores.Formats()))
	for _, f := range stores.Formats() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}
