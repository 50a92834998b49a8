package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tenderdocs/pkg/client"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	baseURL string
	token   string
	tenant  string
	output  string
	timeout time.Duration
}

func (o *options) client() *client.Client {
	return client.New(client.Config{BaseURL: o.baseURL, Token: o.token, Timeout: o.timeout})
}

func (o *options) requireTenant() error {
	if o.tenant == "" {
		return errors.New("--tenant is required")
	}
	return nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "docctl",
		Short:         "Manage tender documents",
		Long:          `Upload, inspect, update and delete tender documents through the document API.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputJSON, outputYAML:
				return nil
			default:
				return errors.New("--output must be json or yaml")
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.baseURL, "url", envOr("DOCAPI_URL", "http://localhost:8080"), "API base URL (env DOCAPI_URL)")
	pf.StringVar(&opts.token, "token", envOr("DOCAPI_TOKEN", ""), "Bearer token (env DOCAPI_TOKEN)")
	pf.StringVarP(&opts.tenant, "tenant", "t", envOr("DOCAPI_TENANT", ""), "Tenant id (env DOCAPI_TENANT)")
	pf.StringVarP(&opts.output, "output", "o", outputJSON, "Output format: json or yaml")
	pf.DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "Request timeout")

	root.AddCommand(
		newHealthCmd(opts),
		newUploadCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newPatchCmd(opts),
		newDeleteCmd(opts),
		newURLCmd(opts),
		newDownloadCmd(opts),
	)
	return root
}
