package cayleyhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/cayleygraph/kgl/autocomplete"
	"github.com/cayleygraph/kgl/eval"
	"github.com/cayleygraph/kgl/export"
	"github.com/cayleygraph/kgl/klog"
	"github.com/cayleygraph/kgl/store"
)

// API wires a store, its evaluator and an autocomplete trie built from
// the store's current labels to httprouter handlers.
type API struct {
	Store     *store.Store
	Namespace store.Namespace
	Eval      *eval.Evaluator
	Timeout   time.Duration

	r *httprouter.Router
}

// NewAPI builds an API over s.
func NewAPI(s *store.Store, ns store.Namespace) *API {
	api := &API{Store: s, Namespace: ns, Eval: eval.New(s)}
	api.r = httprouter.New()
	api.RegisterOn(api.r)
	return api
}

// ServeHTTP satisfies http.Handler.
func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.r.ServeHTTP(w, r)
}

// RegisterOn mounts the query and autocomplete routes on r.
func (api *API) RegisterOn(r *httprouter.Router) {
	r.POST("/", LogRequest(api.ServeQuery))
	r.GET("/", LogRequest(api.ServeQuery))
	r.POST("/autocomplete", LogRequest(api.ServeAutocomplete))
}

// LogRequest wraps an httprouter.Handle with start/complete logging via
// the ambient klog logger.
func LogRequest(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
		start := time.Now()
		klog.Infof("started %s %s", req.Method, req.URL.Path)
		handler(w, req, params)
		klog.Infof("completed %s %s in %v", req.Method, req.URL.Path, time.Since(start))
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Result    interface{} `json:"result"`
	Dot       string      `json:"dot"`
	TimeTaken string      `json:"time_taken"`
}

const maxQuerySize = 1 << 20 // 1 MB

func (api *API) ServeQuery(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer r.Body.Close()

	var req queryRequest
	if r.Method == http.MethodGet {
		req.Query = r.URL.Query().Get("query")
	} else {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxQuerySize))
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, err)
			return
		}
		if err := json.Unmarshal(data, &req); err != nil {
			jsonResponse(w, http.StatusBadRequest, "Syntax error.")
			return
		}
	}
	if req.Query == "" {
		jsonResponse(w, http.StatusBadRequest, "Syntax error.")
		return
	}

	ctx := r.Context()
	var cancel context.CancelFunc
	if api.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, api.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, _, err := api.Eval.Evaluate(ctx, req.Query)
	elapsed := time.Since(start)
	mQueryDuration.Observe(elapsed.Seconds())
	if err != nil {
		mQueriesTotal.WithLabelValues("error").Inc()
		jsonResponse(w, http.StatusBadRequest, "Syntax error.")
		return
	}
	mQueriesTotal.WithLabelValues("ok").Inc()

	var dotBuf bytes.Buffer
	if err := export.WriteDOT(&dotBuf, api.Store, api.Namespace, req.Query, res); err != nil {
		klog.Warningf("dot export failed: %v", err)
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	json.NewEncoder(w).Encode(queryResponse{
		Result:    res,
		Dot:       dotBuf.String(),
		TimeTaken: elapsed.String(),
	})
}

type autocompleteRequest struct {
	Query string `json:"query"`
}

type autocompleteResponse struct {
	Completions []string `json:"completions"`
}

func (api *API) ServeAutocomplete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxQuerySize))
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	var req autocompleteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		jsonResponse(w, http.StatusBadRequest, "Syntax error.")
		return
	}

	mAutocompleteTotal.Inc()

	trie := autocomplete.New()
	for _, l := range api.Store.Labels(api.Namespace) {
		trie.Insert(string(l))
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	completions := trie.Complete(req.Query)
	if completions == nil {
		completions = []string{}
	}
	json.NewEncoder(w).Encode(autocompleteResponse{Completions: completions})
}
