package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	oshttp "github.com/wesleyorama2/oneshot/http"
	"github.com/wesleyorama2/oneshot/internal/expect"
	"github.com/wesleyorama2/oneshot/internal/history"
	"github.com/wesleyorama2/oneshot/internal/logging"
	"github.com/wesleyorama2/oneshot/internal/output"
	"github.com/wesleyorama2/oneshot/internal/stats"
	"github.com/wesleyorama2/oneshot/nettransport"
)

const defaultTimeout = 30 * time.Second

// errSchemaMismatch is returned when a response body fails its schema.
var errSchemaMismatch = errors.New("response does not match schema")

// plan describes one exchange independently of where it was defined.
type plan struct {
	Method      oshttp.Method
	URL         string
	Headers     *oshttp.Params
	Query       *oshttp.Params
	Body        []byte
	ContentType string
	Timeout     time.Duration
	Follow      bool
	Extract     map[string]string
	Schema      []byte
}

// session holds the options shared by every exchange of one invocation.
type session struct {
	out       io.Writer
	errOut    io.Writer
	formatter output.FormatProvider
	logger    zerolog.Logger

	noColor     bool
	verbose     bool
	insecure    bool
	repeat      int
	rate        float64
	historyPath string
}

// addSessionFlags registers the flags read by newSession.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("verbose", "v", false, "Write a wire trace to stderr")
	cmd.Flags().BoolP("insecure", "k", false, "Skip TLS certificate verification")
	cmd.Flags().IntP("repeat", "n", 1, "Number of sequential exchanges to perform")
	cmd.Flags().Float64("rate", 0, "Maximum exchanges per second when repeating (0 = unpaced)")
	cmd.Flags().String("history", "", "Append every exchange to this SQLite journal")
}

// addRequestFlags registers the flags read by requestPlan.
func addRequestFlags(cmd *cobra.Command, withBody bool) {
	cmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers to include as 'Key: value' (can be used multiple times)")
	cmd.Flags().StringArrayP("query", "q", []string{}, "Query parameters as key=value (can be used multiple times)")
	cmd.Flags().StringP("content-type", "c", "", "Content type announced with the request")
	cmd.Flags().DurationP("timeout", "t", defaultTimeout, "Request timeout (0 = none)")
	cmd.Flags().Bool("no-follow", false, "Do not follow redirects")
	cmd.Flags().StringArrayP("extract", "e", []string{}, "Extract a value from the JSON response as name=path (can be used multiple times)")
	cmd.Flags().String("schema", "", "Validate the JSON response against this JSON Schema file")
	if withBody {
		cmd.Flags().StringP("data", "d", "", "Data to send in the request body (@file reads a file)")
		cmd.Flags().StringP("json", "j", "", "JSON data to send in the request body")
	}
}

func newSession(cmd *cobra.Command) (*session, error) {
	noColorFlag, _ := cmd.Flags().GetBool("no-color")
	format, _ := cmd.Flags().GetString("output")
	level, _ := cmd.Flags().GetString("log-level")
	verbose, _ := cmd.Flags().GetBool("verbose")
	insecure, _ := cmd.Flags().GetBool("insecure")
	repeat, _ := cmd.Flags().GetInt("repeat")
	pace, _ := cmd.Flags().GetFloat64("rate")
	historyPath, _ := cmd.Flags().GetString("history")

	if repeat < 1 {
		return nil, fmt.Errorf("--repeat must be at least 1, got %d", repeat)
	}
	if pace < 0 {
		return nil, fmt.Errorf("--rate must not be negative, got %g", pace)
	}

	outputFormat, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	noColor := colorOff(cmd.OutOrStdout(), noColorFlag)
	logger, err := logging.New(cmd.ErrOrStderr(), level, colorOff(cmd.ErrOrStderr(), noColorFlag))
	if err != nil {
		return nil, err
	}

	return &session{
		out:         cmd.OutOrStdout(),
		errOut:      cmd.ErrOrStderr(),
		formatter:   output.GetFormatter(outputFormat, verbose, noColor),
		logger:      logger,
		noColor:     noColor,
		verbose:     verbose,
		insecure:    insecure,
		repeat:      repeat,
		rate:        pace,
		historyPath: historyPath,
	}, nil
}

// colorOff reports whether output to w should be plain.
func colorOff(w io.Writer, flag bool) bool {
	if f, ok := w.(*os.File); ok {
		return output.ColorDisabled(flag, f)
	}
	return true
}

// requestPlan builds a plan for method from the command line.
func requestPlan(cmd *cobra.Command, method oshttp.Method, rawURL string) (*plan, error) {
	headerArgs, _ := cmd.Flags().GetStringArray("header")
	queryArgs, _ := cmd.Flags().GetStringArray("query")
	contentType, _ := cmd.Flags().GetString("content-type")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	noFollow, _ := cmd.Flags().GetBool("no-follow")
	extractArgs, _ := cmd.Flags().GetStringArray("extract")
	schemaPath, _ := cmd.Flags().GetString("schema")

	p := &plan{
		Method:      method,
		URL:         rawURL,
		Headers:     oshttp.NewParams(),
		Query:       oshttp.NewParams(),
		ContentType: contentType,
		Timeout:     timeout,
		Follow:      !noFollow,
	}

	for _, header := range headerArgs {
		key, value, ok := strings.Cut(header, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q (want 'Key: value')", header)
		}
		p.Headers.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	for _, q := range queryArgs {
		key, value, _ := strings.Cut(q, "=")
		p.Query.Set(key, value)
	}

	if len(extractArgs) > 0 {
		p.Extract = make(map[string]string, len(extractArgs))
		for _, e := range extractArgs {
			name, path, ok := strings.Cut(e, "=")
			if !ok {
				path = name
			}
			p.Extract[name] = path
		}
	}

	if schemaPath != "" {
		doc, err := os.ReadFile(schemaPath)
		if err != nil {
			return nil, fmt.Errorf("error reading schema: %w", err)
		}
		p.Schema = doc
	}

	if cmd.Flags().Lookup("data") == nil {
		return p, nil
	}
	data, _ := cmd.Flags().GetString("data")
	jsonData, _ := cmd.Flags().GetString("json")
	switch {
	case data != "" && jsonData != "":
		return nil, errors.New("--data and --json are mutually exclusive")
	case strings.HasPrefix(data, "@"):
		body, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("error reading body: %w", err)
		}
		p.Body = body
	case data != "":
		p.Body = []byte(data)
	case jsonData != "":
		p.Body = []byte(jsonData)
		if p.ContentType == "" {
			p.ContentType = "application/json"
		}
	}
	return p, nil
}

// prepare builds the template call for p. The caller closes it.
func (s *session) prepare(p *plan) (*oshttp.Call, error) {
	base, path, urlQuery, err := parseURL(p.URL)
	if err != nil {
		return nil, err
	}

	engine := nettransport.New(
		nettransport.WithInsecureSkipVerify(s.insecure),
		nettransport.WithUserAgent("oneshot/"+version),
	)

	opts := []oshttp.ClientOption{
		oshttp.WithBaseURL(base),
		oshttp.WithFollowRedirects(p.Follow),
	}
	if p.Headers != nil {
		opts = append(opts, oshttp.WithHeaders(p.Headers))
	}
	if s.verbose {
		opts = append(opts, oshttp.WithTraceSink(output.NewTraceWriter(s.errOut, s.noColor)))
	}
	client := oshttp.NewClient(engine, opts...)

	var body []byte
	if len(p.Body) > 0 {
		body = p.Body
	}
	call, err := client.NewCall(path, oshttp.CallConfig{
		Method:      p.Method,
		Body:        body,
		ContentType: p.ContentType,
	})
	if err != nil {
		return nil, err
	}

	urlQuery.Each(call.AddQuery)
	if p.Query != nil {
		p.Query.Each(call.AddQuery)
	}
	return call, nil
}

// execute performs p s.repeat times, each on a fresh clone of the prepared
// call, and reports the outcome.
func (s *session) execute(ctx context.Context, p *plan) error {
	var schema *expect.Schema
	if p.Schema != nil {
		var err error
		if schema, err = expect.CompileSchema(p.Schema); err != nil {
			return err
		}
	}

	call, err := s.prepare(p)
	if err != nil {
		return err
	}
	defer call.Close()

	var journal history.Store
	if s.historyPath != "" {
		store, err := history.NewSQLiteStore(s.historyPath)
		if err != nil {
			return err
		}
		defer store.Close()
		journal = store
	}

	var limiter *rate.Limiter
	if s.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.rate), 1)
	}

	recorder := stats.NewRecorder()
	var last *oshttp.Response
	var lastErr error

	for i := 0; i < s.repeat; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		resp, performed, err := s.performOnce(ctx, call, p.Timeout, journal)
		if i == 0 {
			fmt.Fprint(s.out, s.formatter.FormatRequest(performed))
		}

		if err != nil {
			recorder.Record(0, 0, 0, err)
			lastErr = err
			if s.repeat == 1 {
				return err
			}
			s.logger.Warn().Err(err).Int("exchange", i+1).Msg("exchange failed")
			continue
		}

		recorder.Record(resp.Elapsed, resp.StatusCode, len(resp.Body), nil)
		if s.repeat == 1 {
			fmt.Fprint(s.out, s.formatter.FormatResponse(resp))
		}
		last = resp
	}

	if s.repeat > 1 {
		fmt.Fprint(s.out, s.formatter.FormatSummary(recorder.Summary()))
	}

	if last != nil {
		if err := s.check(last, p, schema); err != nil {
			return err
		}
	}

	if summary := recorder.Summary(); summary.Failures > 0 {
		return fmt.Errorf("%d of %d exchanges failed, last error: %w", summary.Failures, summary.Count, lastErr)
	}
	return nil
}

// performOnce runs one exchange on a clone of call and journals it. The
// clone is returned so its URI can be reported.
func (s *session) performOnce(ctx context.Context, call *oshttp.Call, timeout time.Duration, journal history.Store) (*oshttp.Response, *oshttp.Call, error) {
	current, err := call.Clone()
	if err != nil {
		return nil, call, err
	}
	defer current.Close()

	start := time.Now()
	resp, err := current.Perform(ctx, timeout)
	elapsed := time.Since(start)

	event := s.logger.Debug().
		Str("id", current.ID).
		Str("method", current.Method().String()).
		Str("uri", current.URI())
	if err != nil {
		event.Err(err).Dur("elapsed", elapsed).Msg("exchange failed")
	} else {
		elapsed = resp.Elapsed
		event.Int("status", resp.StatusCode).Dur("elapsed", elapsed).Int("size", len(resp.Body)).Msg("exchange complete")
	}

	if journal != nil {
		entry := &history.Entry{
			CallID:    current.ID,
			Method:    current.Method().String(),
			URI:       current.URI(),
			Elapsed:   elapsed,
			CreatedAt: current.CreatedAt,
		}
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Status = resp.StatusCode
			entry.BodySize = len(resp.Body)
		}
		if jerr := journal.Append(ctx, entry); jerr != nil {
			s.logger.Warn().Err(jerr).Msg("could not write history entry")
		}
	}

	return resp, current, err
}

// check runs the configured extractions and schema validation on resp.
func (s *session) check(resp *oshttp.Response, p *plan, schema *expect.Schema) error {
	if len(p.Extract) > 0 {
		results, err := expect.ExtractAll(resp.Body, p.Extract)
		fmt.Fprint(s.out, s.formatter.FormatExtractions(results))
		if err != nil {
			s.logger.Info().Err(err).Msg("some extractions failed")
		}
	}

	if schema == nil {
		return nil
	}
	err := schema.Validate(resp.Body)
	fmt.Fprint(s.out, s.formatter.FormatSchemaResult(err))
	if err != nil {
		return fmt.Errorf("%w: %v", errSchemaMismatch, err)
	}
	return nil
}
