package provider

import "encoding/json"

type providerJSON struct {
	RootPackageGraphID int            `json:"root_package_graph_id"`
	Graphs             []PackageGraph `json:"graphs"`
	Packages           []PackageInfo  `json:"packages"`
}

// MarshalJSON encodes the provider with graphs and packages in id order.
func (p *Provider) MarshalJSON() ([]byte, error) {
	out := providerJSON{RootPackageGraphID: p.rootGraphID}
	for _, id := range p.GraphIDs() {
		out.Graphs = append(out.Graphs, p.graphs[id])
	}
	for _, id := range p.PackageIDs() {
		out.Packages = append(out.Packages, p.packages[id])
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes and validates a provider.
func (p *Provider) UnmarshalJSON(data []byte) error {
	var in providerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	decoded, err := New(in.RootPackageGraphID, in.Graphs, in.Packages)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}
