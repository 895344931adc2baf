// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input  string // program image to read
	Output string // file to write, stdout for documents if empty
	Levels string // level document to import
	Layout string // optional layout file overriding the default addresses
}

// Flags contains behavior options.
type Flags struct {
	Debug bool
	Quiet bool
}

// Program options of the level tool.
type Program struct {
	Parameters
	Flags
}
