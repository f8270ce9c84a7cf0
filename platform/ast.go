package platform

// IOFile is a parsed IO description.
//
//	io serial 0 {
//	    subsignal tx { pins "D10"; }
//	    subsignal rx { pins "A9"; }
//	    iostandard "LVCMOS33";
//	}
type IOFile struct {
	Platform *PlatformDecl `@@?`
	Decls    []*IODecl     `@@*`
}

// PlatformDecl names the board, its device and its default clock.
type PlatformDecl struct {
	Name        string `"platform" @Ident`
	Device      string `"device" @String`
	ClockName   string `"clock" @Ident`
	ClockPeriod int    `"period_ps" @Int ";"`
}

// IODecl declares one numbered resource.
type IODecl struct {
	Name   string    `"io" @Ident`
	Number int       `@Int`
	Items  []*IOItem `"{" @@* "}"`
}

// IOItem is one statement inside an io or subsignal block.
type IOItem struct {
	Pins       *PinsStmt      `  @@`
	IOStandard *string        `| "iostandard" @String ";"`
	Misc       *string        `| "misc" @String ";"`
	Inverted   bool           `| @"inverted" ";"`
	Subsignal  *SubsignalDecl `| @@`
}

// PinsStmt lists package pins, separated by blanks.
type PinsStmt struct {
	Pins []string `"pins" @String+ ";"`
}

// SubsignalDecl declares a named group of pins inside a resource.
type SubsignalDecl struct {
	Name  string    `"subsignal" @Ident`
	Items []*IOItem `"{" @@* "}"`
}
