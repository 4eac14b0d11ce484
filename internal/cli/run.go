package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	oshttp "github.com/wesleyorama2/oneshot/http"
	"github.com/wesleyorama2/oneshot/internal/config"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a named request from a collection file",
		Example: `  oneshot run -f api.yaml -e dev -r getUser
  oneshot run -f api.yaml -e prod -r health -n 20 --rate 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			environment, _ := cmd.Flags().GetString("environment")
			request, _ := cmd.Flags().GetString("request")

			if configFile == "" {
				return errors.New("config file is required")
			}
			if environment == "" {
				return errors.New("environment is required")
			}
			if request == "" {
				return errors.New("request is required")
			}

			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}

			if verrs := config.ValidateConfig(cfg); len(verrs) > 0 {
				msgs := make([]string, 0, len(verrs))
				for _, e := range verrs {
					msgs = append(msgs, "  - "+e.Error())
				}
				return fmt.Errorf("configuration validation errors:\n%s", strings.Join(msgs, "\n"))
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			p, err := resolvedPlan(cmd, cfg, environment, request)
			if err != nil {
				return err
			}
			return s.execute(cmd.Context(), p)
		},
	}

	cmd.Flags().StringP("config", "f", "", "Collection file (YAML or JSON)")
	cmd.Flags().StringP("environment", "e", "", "Environment to use")
	cmd.Flags().StringP("request", "r", "", "Request to run")
	cmd.Flags().DurationP("timeout", "t", defaultTimeout, "Timeout for requests that do not set one (0 = none)")
	addSessionFlags(cmd)
	return cmd
}

// resolvedPlan binds the named request to the environment.
func resolvedPlan(cmd *cobra.Command, cfg *config.Config, environment, request string) (*plan, error) {
	r, err := cfg.Resolve(environment, request)
	if err != nil {
		return nil, err
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout, _ = cmd.Flags().GetDuration("timeout")
	}

	return &plan{
		Method:      r.Method,
		URL:         r.URL,
		Headers:     oshttp.ParamsFromMap(r.Headers),
		Query:       oshttp.ParamsFromMap(r.QueryParams),
		Body:        r.Body,
		ContentType: r.ContentType,
		Timeout:     timeout,
		Follow:      r.FollowRedirects,
		Extract:     r.Extract,
		Schema:      r.Schema,
	}, nil
}
