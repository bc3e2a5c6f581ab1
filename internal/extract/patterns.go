// Package extract turns the free-text output of the benchmark programs into
// a metrics record and persists both forms to the logs directory.
package extract

import "regexp"

// TableVersion identifies the pattern tables below. Bump it whenever a
// metric name or pattern changes so stored records can be told apart.
const TableVersion = "v1"

// Pattern maps a metric name to the expression that captures its value in
// group 1.
type Pattern struct {
	Name string
	Expr *regexp.Regexp
}

func pattern(name, expr string) Pattern {
	return Pattern{Name: name, Expr: regexp.MustCompile(expr)}
}

// Table is the full extraction contract with the external tool.
type Table struct {
	Version   string
	Benchmark []Pattern // applied to the preprocessing benchmark output
	Params    []Pattern // applied to the parameter summary output
}

// DefaultTable is the contract for the current benchmark programs.
var DefaultTable = Table{
	Version: TableVersion,
	Benchmark: []Pattern{
		pattern("A Expansion Time (ms)", `A expansion time: ([\d.]+) ms`),
		pattern("Global Prepr (s)", `Global preprocessing [^:]+: ([\d.]+) ms`),
		pattern("Server Per-Client Prepr (s)", `Server Per-Client Prepr \(s\) : ([\d.]+)`),
		pattern("Client Local Prepr (s)", `Client Local Prepr \(s\) : ([\d.]+)`),
		pattern("Client Prepa Pre Req (s)", `Client Prepa Pre Req \(s\) : ([\d.]+)`),
		pattern("Server Prepa Comp (s)", `Server Prepa Comp \(s\) : ([\d.]+)`),
		pattern("Client Prepa Post Req (s)", `Client Prepa Post Req \(s\) : ([\d.]+)`),
		pattern("Query: Client Req Gen (ms)", `Query: Client Req Gen \(ms\) : ([\d.]+)`),
		pattern("Query: Server Comp (s)", `Query: Server Comp \(s\) : ([\d.]+)`),
		pattern("Query: Client Decryption (ms)", `Query: Client Decryption \(ms\) : ([\d.]+)`),
		pattern("Query: Client Verification (ms)", `Query: Client Verification \(ms\) : ([\d.]+)`),
		pattern("VSPIR Uncompr. Z (KiB)", `VSPIR Uncompr\. Z \(KiB\) : ([\d.]+)`),
	},
	Params: []Pattern{
		pattern("Hints (MiB)", `Hints \(MiB\): hint download = ([\d.]+)`),
		pattern("Online State (KiB)", `Online State \(KiB\): client storage = ([\d.]+)`),
		pattern("Offline Up (KiB)", `Offline Up \(KiB\): preproc upload = ([\d.]+)`),
		pattern("Offline Down (KiB)", `Offline Down \(KiB\): preproc download  = ([\d.]+)`),
		pattern("Query Up (KiB)", `Query Up \(KiB\): online upload size = ([\d.]+)`),
		pattern("Query Down (KiB)", `Query Down \(KiB\): online download size = ([\d.]+)`),
	},
}

// Names lists every metric the table can produce, in extraction order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.Benchmark)+len(t.Params))
	for _, p := range t.Benchmark {
		names = append(names, p.Name)
	}
	for _, p := range t.Params {
		names = append(names, p.Name)
	}
	return names
}
