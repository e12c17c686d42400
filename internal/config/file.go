package config

// File represents the structure of the .hashstatic configuration file.
// Every field is optional; unset fields leave the flag defaults alone.
type File struct {
	// Keep retains original assets after fingerprinting.
	Keep *bool `yaml:"keep,omitempty"`

	// Strict aborts on any asset that cannot be fingerprinted.
	Strict *bool `yaml:"strict,omitempty"`

	// PreserveDirs keeps fingerprinted files beside their originals.
	PreserveDirs *bool `yaml:"preserveDirs,omitempty"`

	// Algorithm is the fingerprint hash, "xxh32" or "sha3".
	Algorithm string `yaml:"algorithm,omitempty"`

	// ShowTime prints the elapsed time after each run.
	ShowTime *bool `yaml:"showTime,omitempty"`

	// Jobs is the batch concurrency.
	Jobs int `yaml:"jobs,omitempty"`
}

// Flag names that a configuration file can default.
const (
	FlagKeep         = "keep"
	FlagStrict       = "strict"
	FlagPreserveDirs = "preserve-dirs"
	FlagAlgorithm    = "algorithm"
	FlagShowTime     = "show-time"
	FlagJobs         = "jobs"
)

// ApplyFile copies the values set in f onto c, except for those whose flag
// was given explicitly on the command line as reported by isSet.
// A nil f or isSet is allowed.
func (c *Config) ApplyFile(f *File, isSet func(flag string) bool) {
	if f == nil {
		return
	}
	if isSet == nil {
		isSet = func(string) bool { return false }
	}

	applyBool := func(flag string, v *bool, dst *bool) {
		if v != nil && !isSet(flag) {
			*dst = *v
		}
	}
	applyBool(FlagKeep, f.Keep, &c.KeepOriginals)
	applyBool(FlagStrict, f.Strict, &c.Strict)
	applyBool(FlagPreserveDirs, f.PreserveDirs, &c.PreserveDirs)
	applyBool(FlagShowTime, f.ShowTime, &c.ShowTime)

	if f.Algorithm != "" && !isSet(FlagAlgorithm) {
		c.Algorithm = f.Algorithm
	}
	if f.Jobs != 0 && !isSet(FlagJobs) {
		c.Jobs = f.Jobs
	}
}
