package cli

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

// newMethodCmd builds the command for a single verb. Only body-carrying
// verbs accept --data and --json.
func newMethodCmd(method oshttp.Method, short, example string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     strings.ToLower(method.String()) + " URL",
		Short:   short,
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			p, err := requestPlan(cmd, method, args[0])
			if err != nil {
				return err
			}
			return s.execute(cmd.Context(), p)
		},
	}
	addRequestFlags(cmd, method.CarriesBody())
	addSessionFlags(cmd)
	return cmd
}

func newGetCmd() *cobra.Command {
	return newMethodCmd(oshttp.MethodGet,
		"Make a GET request to the specified URL",
		`  oneshot get https://api.example.com/users -q page=2 -H "Authorization: Bearer token"
  oneshot get https://api.example.com/users/1 -e name=name --schema user.json`)
}

func newHeadCmd() *cobra.Command {
	return newMethodCmd(oshttp.MethodHead,
		"Make a HEAD request to the specified URL",
		`  oneshot head -o yaml https://example.com/download.tar.gz`)
}

// parseURL splits a URL into the base (scheme, userinfo and host), the
// escaped path and the query parameters. Query keys are returned in sorted
// order; the fragment is dropped since it is never sent. A key given more
// than once is an error.
func parseURL(fullURL string) (string, string, *oshttp.Params, error) {
	// Add scheme if missing
	if !strings.Contains(fullURL, "://") {
		fullURL = "http://" + fullURL
	}

	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return "", "", nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Host == "" {
		return "", "", nil, fmt.Errorf("invalid URL %q: missing host", fullURL)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	if parsedURL.User != nil {
		baseURL = fmt.Sprintf("%s://%s@%s", parsedURL.Scheme, parsedURL.User.String(), parsedURL.Host)
	}

	path := parsedURL.EscapedPath()
	if path == "" {
		path = "/"
	}

	values, err := url.ParseQuery(parsedURL.RawQuery)
	if err != nil {
		return "", "", nil, fmt.Errorf("invalid query in %q: %w", fullURL, err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	query := oshttp.NewParams()
	for _, k := range keys {
		if len(values[k]) > 1 {
			return "", "", nil, fmt.Errorf("query key %q repeated in %q: only one value per key is supported", k, fullURL)
		}
		query.Set(k, values[k][0])
	}

	return baseURL, path, query, nil
}
