package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aurdist/internal/ports"
	"aurdist/internal/shared"
	"aurdist/internal/types"
)

// DefaultRegistryURL is the AUR RPC info endpoint.
// https://wiki.archlinux.org/title/AUR_web_interface#RPC_interface
const DefaultRegistryURL = "https://aur.archlinux.org/rpc/?v=5&type=info&arg[]="

const defaultRegistryTimeout = 10 * time.Second

// RegistryAdapter queries the community registry's RPC interface. Lookups
// carry a short timeout; the caller degrades transport errors to not-found.
type RegistryAdapter struct {
	Endpoint string
	Client   *http.Client
}

func NewRegistryAdapter(endpoint string) RegistryAdapter {
	if endpoint == "" {
		endpoint = DefaultRegistryURL
	}
	return RegistryAdapter{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: defaultRegistryTimeout},
	}
}

type rpcResponse struct {
	ResultCount int         `json:"resultcount"`
	Results     []rpcResult `json:"results"`
}

type rpcResult struct {
	Version      string   `json:"Version"`
	Depends      []string `json:"Depends"`
	MakeDepends  []string `json:"MakeDepends"`
	CheckDepends []string `json:"CheckDepends"`
	OptDepends   []string `json:"OptDepends"`
}

func (a RegistryAdapter) Lookup(ctx context.Context, name string) (types.RegistryInfo, error) {
	lookupURL := a.Endpoint + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return types.RegistryInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to build registry request").
			WithCause(err)
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return types.RegistryInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("registry lookup failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return types.RegistryInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("registry lookup failed").
			WithCause(shared.HTTPStatusError(resp.StatusCode, lookupURL))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.RegistryInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read registry response").
			WithCause(err)
	}
	var parsed rpcResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.RegistryInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode registry response").
			WithCause(err)
	}
	if parsed.ResultCount == 0 || len(parsed.Results) == 0 {
		return types.RegistryInfo{}, nil
	}
	result := parsed.Results[0]
	return types.RegistryInfo{
		Found:        true,
		Version:      result.Version,
		Depends:      result.Depends,
		MakeDepends:  result.MakeDepends,
		CheckDepends: result.CheckDepends,
		OptDepends:   result.OptDepends,
	}, nil
}

var _ ports.RegistryPort = RegistryAdapter{}
