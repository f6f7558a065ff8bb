package dash

import (
	"sort"
	"strings"

	"Facturacion/api/boletas"
)

// esEntidadPublica: public payers are municipal or ministry entries in the
// export's naming convention.
func esEntidadPublica(nombre string) bool {
	n := strings.ToUpper(strings.TrimSpace(nombre))
	return strings.HasPrefix(n, "MUNIC") || strings.HasPrefix(n, "MIN.DE")
}

// EntidadesPublicas lists the distinct public payers in the listing,
// ordered by code.
func EntidadesPublicas(listado []boletas.Boleta) []boletas.Entidad {
	return entidadesFiltradas(listado, true)
}

// EntidadesPrivadas lists the distinct private payers, ordered by code.
func EntidadesPrivadas(listado []boletas.Boleta) []boletas.Entidad {
	return entidadesFiltradas(listado, false)
}

func entidadesFiltradas(listado []boletas.Boleta, publicas bool) []boletas.Entidad {
	vistas := make(map[int]struct{})
	entidades := []boletas.Entidad{}
	for _, b := range listado {
		if _, ok := vistas[b.EntidadCodigo]; ok {
			continue
		}
		vistas[b.EntidadCodigo] = struct{}{}
		if esEntidadPublica(b.EntidadNombre) == publicas {
			entidades = append(entidades, boletas.Entidad{
				Codigo: b.EntidadCodigo,
				Nombre: b.EntidadNombre,
			})
		}
	}
	sort.Slice(entidades, func(i, j int) bool {
		return entidades[i].Codigo < entidades[j].Codigo
	})
	return entidades
}
