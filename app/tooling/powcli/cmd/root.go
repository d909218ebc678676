// Package cmd contains the powcli app.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/spf13/cobra"
)

var (
	url       string
	algorithm string
	timeout   time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "powcli",
	Short:        "Hash, mine and inspect a proof of work chain",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().StringVarP(&algorithm, "algorithm", "a", digest.AlgSHA256, "Digest algorithm for offline commands.")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "Time to wait on the node or on offline mining.")
}

// =============================================================================

// errorResponse is the document the node returns for a failed request.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// client returns the http client used to talk to the node.
func client() *http.Client {
	return &http.Client{Timeout: timeout}
}

// get performs a GET against the node and decodes the response into resp.
func get(path string, resp any) error {
	r, err := client().Get(url + path)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return decodeResponse(r, resp)
}

// post sends the request document to the node and decodes the response
// into resp.
func post(path string, req any, resp any) error {
	var body io.Reader = http.NoBody
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	r, err := client().Post(url+path, "application/json", body)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return decodeResponse(r, resp)
}

func decodeResponse(r *http.Response, resp any) error {
	if r.StatusCode >= http.StatusBadRequest {
		var er errorResponse
		if err := json.NewDecoder(r.Body).Decode(&er); err != nil {
			return fmt.Errorf("node returned status %d", r.StatusCode)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("node returned status %d: %s: %v", r.StatusCode, er.Error, er.Fields)
		}
		return fmt.Errorf("node returned status %d: %s", r.StatusCode, er.Error)
	}

	if resp == nil {
		return nil
	}

	return json.NewDecoder(r.Body).Decode(resp)
}

// printJSON writes the value to stdout as indented json.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
