package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// SafeABI is a small but real ABI fragment used by the fake explorers.
const SafeABI = `[{"inputs":[],"name":"VERSION","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"}]`

const rateLimitMessage = "Max rate limit reached, please use API Key for higher rate limit"

var (
	graphQLAddress = regexp.MustCompile(`hash: "(0x[0-9a-fA-F]{40})"`)
	graphQLLabel   = regexp.MustCompile(`labelhash: "(0x[0-9a-fA-F]+)"`)
	graphQLAccount = regexp.MustCompile(`account\(id: "(0x[0-9a-fA-F]+)"\)`)
)

// FakeContract is a verified contract known to FakeExplorer.
type FakeContract struct {
	Address        string
	Name           string
	ABI            string
	PartialMatch   bool
	Implementation string
}

// FakeExplorer serves the Etherscan, Blockscout, Sourcify and ENS subgraph
// endpoints from a single in-memory contract set.
//
//	Etherscan   GET  /api
//	Blockscout  POST /graphql
//	Sourcify    GET  /server/chains, /contracts/{match}/{chain}/{address}/metadata.json
//	ENS         POST /subgraph
type FakeExplorer struct {
	*httptest.Server

	mu            sync.Mutex
	contracts     map[string]FakeContract
	labels        map[string]string
	registrations map[string]json.RawMessage
	chains        []uint64
	rateLimited   int
	failing       bool
	requests      map[string]int
}

func NewFakeExplorer(t *testing.T, chains ...uint64) *FakeExplorer {
	t.Helper()

	if len(chains) == 0 {
		chains = []uint64{1}
	}
	f := &FakeExplorer{
		contracts:     make(map[string]FakeContract),
		labels:        make(map[string]string),
		registrations: make(map[string]json.RawMessage),
		chains:        chains,
		requests:      make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api", f.etherscan).Methods(http.MethodGet)
	r.HandleFunc("/graphql", f.blockscout).Methods(http.MethodPost)
	r.HandleFunc("/server/chains", f.sourcifyChains).Methods(http.MethodGet)
	r.HandleFunc("/contracts/{match}/{chain}/{address}/metadata.json", f.sourcifyMetadata).Methods(http.MethodGet)
	r.HandleFunc("/subgraph", f.subgraph).Methods(http.MethodGet, http.MethodPost)
	r.Use(f.count)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

func (f *FakeExplorer) AddContract(c FakeContract) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ABI == "" {
		c.ABI = SafeABI
	}
	f.contracts[strings.ToLower(c.Address)] = c
}

// AddLabel registers an ENS label under its 0x-prefixed, 64 digit label hash.
func (f *FakeExplorer) AddLabel(hash, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels[strings.ToLower(hash)] = label
}

// AddRegistrations sets the raw registrations list returned for account.
func (f *FakeExplorer) AddRegistrations(account string, registrations string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registrations[strings.ToLower(account)] = json.RawMessage(registrations)
}

// RateLimit makes the next n Etherscan requests fail with a rate limit reply.
func (f *FakeExplorer) RateLimit(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rateLimited = n
}

// Fail makes every endpoint answer 500 while set.
func (f *FakeExplorer) Fail(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

// Requests returns how many requests hit path.
func (f *FakeExplorer) Requests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *FakeExplorer) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests[r.URL.Path]++
		failing := f.failing
		f.mu.Unlock()
		if failing {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeExplorer) contract(address string) (FakeContract, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[strings.ToLower(address)]
	return c, ok
}

func (f *FakeExplorer) etherscan(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	limited := f.rateLimited > 0
	if limited {
		f.rateLimited--
	}
	f.mu.Unlock()
	if limited {
		writeJSON(w, map[string]any{"status": "0", "message": "NOTOK", "result": rateLimitMessage})
		return
	}

	q := r.URL.Query()
	c, found := f.contract(q.Get("address"))
	switch q.Get("action") {
	case "getsourcecode":
		row := map[string]string{
			"SourceCode":     "",
			"ABI":            "Contract source code not verified",
			"ContractName":   "",
			"Proxy":          "0",
			"Implementation": "",
		}
		if found {
			row["SourceCode"] = "contract " + c.Name + " {}"
			row["ABI"] = c.ABI
			row["ContractName"] = c.Name
			if c.Implementation != "" {
				row["Proxy"] = "1"
				row["Implementation"] = c.Implementation
			}
		}
		writeJSON(w, map[string]any{"status": "1", "message": "OK", "result": []any{row}})
	case "getabi":
		if !found {
			writeJSON(w, map[string]any{"status": "0", "message": "NOTOK", "result": "Contract source code not verified"})
			return
		}
		writeJSON(w, map[string]any{"status": "1", "message": "OK", "result": c.ABI})
	default:
		writeJSON(w, map[string]any{"status": "0", "message": "NOTOK", "result": "Error! Missing Or invalid Action name"})
	}
}

func (f *FakeExplorer) blockscout(w http.ResponseWriter, r *http.Request) {
	query, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	m := graphQLAddress.FindStringSubmatch(query)
	if m == nil {
		writeJSON(w, map[string]any{"errors": []any{map[string]string{"message": "invalid query"}}})
		return
	}

	address := map[string]any{"hash": m[1], "smartContract": nil}
	if c, found := f.contract(m[1]); found {
		address["smartContract"] = map[string]string{"name": c.Name, "abi": c.ABI}
	}
	writeJSON(w, map[string]any{"data": map[string]any{"address": address}})
}

func (f *FakeExplorer) sourcifyChains(w http.ResponseWriter, _ *http.Request) {
	chains := make([]map[string]any, 0, len(f.chains))
	for i, id := range f.chains {
		// Sourcify has served chain ids both as numbers and as strings.
		var chainID any = id
		if i%2 == 1 {
			chainID = strconv.FormatUint(id, 10)
		}
		chains = append(chains, map[string]any{"chainId": chainID, "name": fmt.Sprintf("chain %d", id)})
	}
	writeJSON(w, chains)
}

func (f *FakeExplorer) sourcifyMetadata(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	c, found := f.contract(vars["address"])
	// The repository is keyed by checksummed address.
	if !found || c.Address != vars["address"] || c.PartialMatch != (vars["match"] == "partial_match") {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"compiler": map[string]string{"version": "0.8.19+commit.7dd6d404"},
		"output":   map[string]any{"abi": json.RawMessage(c.ABI)},
		"settings": map[string]any{
			"compilationTarget": map[string]string{"contracts/" + c.Name + ".sol": c.Name},
		},
	})
}

func (f *FakeExplorer) subgraph(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.WriteHeader(http.StatusOK)
		return
	}
	query, ok := decodeQuery(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if m := graphQLLabel.FindStringSubmatch(query); m != nil {
		domains := []map[string]string{}
		if label, found := f.labels[strings.ToLower(m[1])]; found {
			domains = append(domains, map[string]string{"labelName": label})
		}
		writeJSON(w, map[string]any{"data": map[string]any{"domains": domains}})
		return
	}
	if m := graphQLAccount.FindStringSubmatch(query); m != nil {
		var account any
		if registrations, found := f.registrations[m[1]]; found {
			account = map[string]any{"registrations": registrations}
		}
		writeJSON(w, map[string]any{"data": map[string]any{"account": account}})
		return
	}
	writeJSON(w, map[string]any{"errors": []any{map[string]string{"message": "unsupported query"}}})
}

func decodeQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return body.Query, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
