package command

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cayleygraph/kgl/internal/config"
	"github.com/cayleygraph/kgl/klog"
	cayleyhttp "github.com/cayleygraph/kgl/server/http"
	"github.com/cayleygraph/kgl/store"
)

// NewHTTPCmd returns the `kgl http` subcommand: serves the query and
// autocomplete endpoints over the current graph, grounded on
// cmd/cayley/command/http.go's SetupRoutes wiring.
func NewHTTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve an HTTP endpoint for the current knowledge graph.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, err := config.GetCurrent()
			if err != nil {
				return ioError(err)
			}

			var s *store.Store
			if cur.Graph == "" {
				s = store.New(store.Config{EnableSubstringIndex: true})
			} else {
				s, err = loadGraph(cur.Graph)
				if err != nil {
					return err
				}
			}

			host, err := cmd.Flags().GetString("host")
			if err != nil {
				return err
			}

			api := cayleyhttp.NewAPI(s, store.DefaultNamespace)
			mux := http.NewServeMux()
			mux.Handle("/", api)
			mux.Handle("/metrics", promhttp.Handler())

			phost := host
			if h, port, err := net.SplitHostPort(host); err == nil && h == "" {
				phost = net.JoinHostPort("localhost", port)
			}
			klog.Infof("listening on %s, query endpoint at http://%s", host, phost)
			return http.ListenAndServe(host, mux)
		},
	}
	cmd.Flags().String("host", "127.0.0.1:8080", "host:port to listen on")
	return cmd
}
