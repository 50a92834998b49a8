package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tenderdocs/pkg/client"
)

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().Health(cmd.Context()); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]string{"status": "ok"})
		},
	}
}

func newUploadCmd(opts *options) *cobra.Command {
	var (
		mimeType   string
		language   string
		uploadedBy string
		name       string
	)
	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTenant(); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			if name == "" {
				name = filepath.Base(args[0])
			}
			if mimeType == "" {
				mimeType = mime.TypeByExtension(filepath.Ext(name))
			}

			doc, err := opts.client().UploadFile(cmd.Context(), client.UploadFileRequest{
				TenantID:   opts.tenant,
				Filename:   name,
				MimeType:   mimeType,
				Language:   language,
				UploadedBy: uploadedBy,
				Body:       f,
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, doc)
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "Content type (default: guessed from the extension)")
	cmd.Flags().StringVar(&language, "language", "", "Document language (default: server default)")
	cmd.Flags().StringVar(&uploadedBy, "uploaded-by", "", "Uploader identity")
	cmd.Flags().StringVar(&name, "name", "", "Stored filename (default: base name of the file)")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tenant's documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTenant(); err != nil {
				return err
			}
			docs, err := opts.client().List(cmd.Context(), opts.tenant)
			if err != nil {
				return err
			}
			if docs == nil {
				docs = []client.Document{}
			}
			return render(cmd.OutOrStdout(), opts.output, docs)
		},
	}
}

func newGetCmd(opts *options) *cobra.Command {
	var includeDeleted bool
	cmd := &cobra.Command{
		Use:   "get [doc-id]",
		Short: "Show a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTenant(); err != nil {
				return err
			}
			doc, err := opts.client().Get(cmd.Context(), opts.tenant, args[0], includeDeleted)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, doc)
		},
	}
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "Also show soft-deleted documents")
	return cmd
}

func newPatchCmd(opts *options) *cobra.Command {
	var (
		status    string
		metadata  string
		updatedBy string
	)
	cmd := &cobra.Command{
		Use:   "patch [doc-id]",
		Short: "Update status or metadata",
		Long:  `Updates a document. Only the flags that are given are sent; --metadata replaces the whole map.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTenant(); err != nil {
				return err
			}
			var patch client.Patch
			if cmd.Flags().Changed("status") {
				patch.Status = &status
			}
			if cmd.Flags().Changed("metadata") {
				m := map[string]any{}
				if err := json.Unmarshal([]byte(metadata), &m); err != nil {
					return fmt.Errorf("--metadata must be a JSON object: %w", err)
				}
				if m == nil {
					m = map[string]any{}
				}
				patch.Metadata = m
			}
			if cmd.Flags().Changed("updated-by") {
				patch.UpdatedBy = &updatedBy
			}
			if patch.Status == nil && patch.Metadata == nil && patch.UpdatedBy == nil {
				return errors.New("nothing to update: set --status, --metadata or --updated-by")
			}

			doc, err := opts.client().Update(cmd.Context(), opts.tenant, args[0], patch)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, doc)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "New status (pending, processing, processed, failed)")
	cmd.Flags().StringVar(&metadata, "metadata", "", `Metadata JSON object, e.g. '{"lot":3}'`)
	cmd.Flags().StringVar(&updatedBy, "updated-by", "", "Updater identity")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [doc-id]",
		Short: "Soft-delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTenant(); err != nil {
				return err
			}
			if err := opts.client().Delete(cmd.Context(), opts.tenant, args[0]); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]any{"id": args[0], "deleted": true})
		},
	}
}

func newURLCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "url [doc-id]",
		Short: "Print a temporary download URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTenant(); err != nil {
				return err
			}
			u, ttl, err := opts.client().DownloadURL(cmd.Context(), opts.tenant, args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]any{
				"url":        u,
				"expires_in": int(ttl.Seconds()),
			})
		},
	}
}

func newDownloadCmd(opts *options) *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "download [doc-id]",
		Short: "Download document content",
		Long:  `Streams the document content to --dest, or to stdout when --dest is "-".`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTenant(); err != nil {
				return err
			}
			rc, _, err := opts.client().Download(cmd.Context(), opts.tenant, args[0])
			if err != nil {
				return err
			}
			defer rc.Close()

			var w io.Writer = cmd.OutOrStdout()
			if dest != "-" {
				f, err := os.Create(dest)
				if err != nil {
					return fmt.Errorf("create file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if _, err := io.Copy(w, rc); err != nil {
				return fmt.Errorf("write content: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dest, "dest", "d", "-", "Destination file")
	return cmd
}
