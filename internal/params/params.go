// Package params turns flag, environment and config file values into a
// sanitized serial configuration and port request.
package params

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/allbin/serialterm"
	"github.com/spf13/viper"
)

// Keys shared by flags, the config file and SERIALTERM_* variables
const (
	KeyPort        = "port"
	KeySpeed       = "speed"
	KeyParity      = "parity"
	KeyDataBits    = "databits"
	KeyStopBits    = "stopbits"
	KeyPattern     = "pattern"
	KeyRangePrefix = "range-prefix"
	KeyRangeStart  = "range-start"
	KeyRangeEnd    = "range-end"
	KeyEOL         = "eol"
	KeyLang        = "lang"
	KeyVerifyIndex = "verify-index"
)

// Numbered COM ports are scanned only where the OS names devices that way
func defaultRangePrefix() string {
	if runtime.GOOS == "windows" {
		return "COM"
	}
	return ""
}

// Settings is everything a session needs besides the console
type Settings struct {
	Config      serial.Config
	Request     serial.PortRequest
	LineEnding  string
	Language    string
	VerifyIndex bool
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	def := serial.DefaultConfig()
	v.SetDefault(KeyPort, "")
	v.SetDefault(KeySpeed, def.BaudRate)
	v.SetDefault(KeyParity, def.Parity.String())
	v.SetDefault(KeyDataBits, def.DataBits)
	v.SetDefault(KeyStopBits, def.StopBits.String())
	v.SetDefault(KeyPattern, serial.DefaultPatterns)
	v.SetDefault(KeyRangePrefix, defaultRangePrefix())
	v.SetDefault(KeyRangeStart, 1)
	v.SetDefault(KeyRangeEnd, 9)
	v.SetDefault(KeyEOL, "lf")
	v.SetDefault(KeyLang, "es")
	v.SetDefault(KeyVerifyIndex, false)
}

// FromViper reads the settings. Unsupported values fall back to their
// defaults instead of failing.
func FromViper(v *viper.Viper) Settings {
	cfg := serial.Config{
		BaudRate: v.GetInt(KeySpeed),
		DataBits: v.GetInt(KeyDataBits),
		Parity:   serial.ParseParity(v.GetString(KeyParity)),
		StopBits: serial.ParseStopBits(v.GetString(KeyStopBits)),
	}.Sanitize()

	req := serial.PortRequest{
		Patterns:    nonEmpty(v.GetStringSlice(KeyPattern)),
		RangePrefix: v.GetString(KeyRangePrefix),
		RangeStart:  v.GetInt(KeyRangeStart),
		RangeEnd:    v.GetInt(KeyRangeEnd),
	}
	if req.RangeStart > req.RangeEnd {
		req.RangeStart, req.RangeEnd = req.RangeEnd, req.RangeStart
	}

	port := strings.TrimSpace(v.GetString(KeyPort))
	if index, err := strconv.Atoi(port); err == nil {
		if index < 1 {
			// keeps the request on the index path so the resolver rejects it
			index = -1
		}
		req.Index = index
	} else {
		req.Name = port
	}

	return Settings{
		Config:      cfg,
		Request:     req,
		LineEnding:  ParseLineEnding(v.GetString(KeyEOL)),
		Language:    v.GetString(KeyLang),
		VerifyIndex: v.GetBool(KeyVerifyIndex),
	}
}

// ParseLineEnding maps lf, cr and crlf to their bytes; anything else is lf
func ParseLineEnding(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cr":
		return "\r"
	case "crlf":
		return "\r\n"
	default:
		return "\n"
	}
}

// PortLabel describes the requested port for the parameter echo; empty
// means automatic selection
func (s Settings) PortLabel() string {
	switch {
	case s.Request.Name != "":
		return s.Request.Name
	case s.Request.Index != 0:
		return "#" + strconv.Itoa(s.Request.Index)
	default:
		return ""
	}
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
