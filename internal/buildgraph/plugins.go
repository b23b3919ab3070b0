package buildgraph

// DefinePlugin freezes constants into the build output.
type DefinePlugin struct {
	Defines map[string]string
}

func (DefinePlugin) Kind() PluginKind { return KindDefine }

// CopyPattern copies From into the output.
//
// From may be a directory (copied verbatim, To is the target directory) or a
// single file (To is the target file). With Match set, From is walked
// recursively and files whose base name matches the pattern are written to
// To, where [name] and [ext] expand to the source base name and extension.
type CopyPattern struct {
	From  string
	Match string
	To    string
}

// CopyPlugin copies files into the output.
type CopyPlugin struct {
	Patterns []CopyPattern
}

func (CopyPlugin) Kind() PluginKind { return KindCopy }

// AnalyzerPlugin writes a bundle report listing emitted files.
type AnalyzerPlugin struct {
	ReportFile string
}

func (AnalyzerPlugin) Kind() PluginKind { return KindAnalyzer }
