package console

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys double as the English text
const (
	msgConnected        = "Connection: ESTABLISHED on port %s (%s)"
	msgQuitHint         = "To leave the console, type: %s"
	msgConnectionFailed = "Connection: NOT ESTABLISHED (%s: %v)"
	msgWriteError       = "Write failed: %v"
	msgConnectionLost   = "Closing console ... (%s: %v)"
	msgPortLocated      = "Port located with pattern: %s"
	msgPortUnavailable  = "Port %s NOT AVAILABLE"
	msgNoPorts          = "No serial ports found"
	msgError            = "Error: %v"
	msgTagline          = "Serial console for Bus Pirate and COM devices"

	msgParameters = "Connection parameters"
	msgPort       = "Port"
	msgSpeed      = "Speed"
	msgParity     = "Parity"
	msgDataBits   = "Data bits"
	msgStopBits   = "Stop bits"
	msgLineEnding = "Line ending"
	msgAutoPort   = "automatic (%s)"

	msgTableID     = "ID"
	msgTableDevice = "COM DEVICE"
	msgTableDesc   = "DESCRIPTION"
	msgTableUSB    = "USB ID"
)

var spanish = map[string]string{
	msgConnected:        "Conexión: ESTABLECIDA en puerto %s (%s)",
	msgQuitHint:         "Para salir de la consola, teclear: %s",
	msgConnectionFailed: "Conexión: NO ESTABLECIDA (%s: %v)",
	msgWriteError:       "Error de escritura: %v",
	msgConnectionLost:   "Cerrando consola ... (%s: %v)",
	msgPortLocated:      "Localizado puerto con el patrón: %s",
	msgPortUnavailable:  "Puerto %s NO DISPONIBLE",
	msgNoPorts:          "No se encontraron puertos serie",
	msgError:            "Error: %v",
	msgTagline:          "Consola serie para Bus Pirate y dispositivos COM",

	msgParameters: "Parámetros de conexión",
	msgPort:       "Puerto",
	msgSpeed:      "Velocidad",
	msgParity:     "Paridad",
	msgDataBits:   "Bits de datos",
	msgStopBits:   "Bits de parada",
	msgLineEnding: "Fin de línea",
	msgAutoPort:   "automático (%s)",

	msgTableID:     "ID",
	msgTableDevice: "DISPOSITIVO COM",
	msgTableDesc:   "DESCRIPCIÓN",
	msgTableUSB:    "ID USB",
}

func init() {
	for key, text := range spanish {
		if err := message.SetString(language.Spanish, key, text); err != nil {
			panic(err)
		}
	}
}

// ParseLanguage maps a --lang value to a supported tag. Spanish is the
// default; anything starting with "en" selects English.
func ParseLanguage(lang string) language.Tag {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), "en") {
		return language.English
	}
	return language.Spanish
}
