package boletas

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolverEntidad parses the composite "codigo/Nombre (sucursal)" field into
// a normalized payer. Leading zeros are stripped from the code, along with
// the legacy "2" prefix digit class some exports carry; the display name is
// everything after the first slash with any parenthesized suffix removed.
//
// Resolution is deterministic: the same composite always yields the same
// code, so two rows with different name casing still map to one payer.
func ResolverEntidad(texto string) (Entidad, error) {
	partes := strings.Split(texto, "/")
	if len(partes) < 2 {
		return Entidad{}, fmt.Errorf("el formato de la entidad '%s' no es válido", texto)
	}

	codigoTexto := strings.TrimLeft(strings.TrimSpace(partes[0]), "02")
	codigo, err := strconv.Atoi(codigoTexto)
	if err != nil {
		return Entidad{}, fmt.Errorf("el código de la entidad '%s' no es un número válido", partes[0])
	}

	nombre := strings.Join(partes[1:], " ")
	if i := strings.Index(nombre, "("); i >= 0 {
		nombre = nombre[:i]
	}
	nombre = strings.TrimSpace(nombre)

	return Entidad{Codigo: codigo, Nombre: nombre}, nil
}
