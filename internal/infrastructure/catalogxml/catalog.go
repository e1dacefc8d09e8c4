// Package catalogxml lee la exportación XML del catálogo de ubicaciones y materiales.
//
// Formato esperado (los sistemas de báscula exportan en ISO-8859-1):
//
//	<catalogo>
//	  <ubicaciones>
//	    <ubicacion id="mty" codigo="MTY" nombre="Patio Monterrey" patio="true" exenta="false"/>
//	  </ubicaciones>
//	  <materiales>
//	    <material id="acero" codigo="ACERO" nombre="Chatarra de acero"/>
//	  </materiales>
//	</catalogo>
package catalogxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

type catalogo struct {
	Ubicaciones struct {
		Valores []ubicacion `xml:"ubicacion"`
	} `xml:"ubicaciones"`
	Materiales struct {
		Valores []material `xml:"material"`
	} `xml:"materiales"`
}

type ubicacion struct {
	ID     string `xml:"id,attr"`
	Codigo string `xml:"codigo,attr"`
	Nombre string `xml:"nombre,attr"`
	Patio  string `xml:"patio,attr"`
	Exenta string `xml:"exenta,attr"`
}

type material struct {
	ID     string `xml:"id,attr"`
	Codigo string `xml:"codigo,attr"`
	Nombre string `xml:"nombre,attr"`
}

// Catalog ubicaciones y materiales leídos, ordenados por código.
type Catalog struct {
	Locations []entity.Location
	Materials []entity.Material
}

// Load abre y decodifica un archivo de catálogo.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode lee el XML. Los registros sin id, código o nombre se descartan; un id repetido
// conserva la última aparición. Un booleano ilegible es error.
func Decode(r io.Reader) (*Catalog, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decodificar catálogo: %w", err)
	}

	locs := make(map[string]entity.Location)
	for _, u := range c.Ubicaciones.Valores {
		id, code, name := strings.TrimSpace(u.ID), strings.TrimSpace(u.Codigo), strings.TrimSpace(u.Nombre)
		if id == "" || code == "" || name == "" {
			continue
		}
		yard, err := parseFlag(u.Patio)
		if err != nil {
			return nil, fmt.Errorf("ubicación %s: patio: %w", id, err)
		}
		exempt, err := parseFlag(u.Exenta)
		if err != nil {
			return nil, fmt.Errorf("ubicación %s: exenta: %w", id, err)
		}
		locs[id] = entity.Location{ID: id, Code: code, Name: name, IsYard: yard, EvidenceExempt: exempt}
	}

	mats := make(map[string]entity.Material)
	for _, m := range c.Materiales.Valores {
		id, code, name := strings.TrimSpace(m.ID), strings.TrimSpace(m.Codigo), strings.TrimSpace(m.Nombre)
		if id == "" || code == "" || name == "" {
			continue
		}
		mats[id] = entity.Material{ID: id, Code: code, Name: name}
	}

	out := &Catalog{
		Locations: make([]entity.Location, 0, len(locs)),
		Materials: make([]entity.Material, 0, len(mats)),
	}
	for _, l := range locs {
		out.Locations = append(out.Locations, l)
	}
	for _, m := range mats {
		out.Materials = append(out.Materials, m)
	}
	sort.Slice(out.Locations, func(i, j int) bool { return out.Locations[i].Code < out.Locations[j].Code })
	sort.Slice(out.Materials, func(i, j int) bool { return out.Materials[i].Code < out.Materials[j].Code })
	return out, nil
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToUpper(charset) {
	case "ISO-8859-1", "ISO8859-1", "LATIN1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	case "UTF-8", "":
		return input, nil
	}
	return nil, fmt.Errorf("codificación no soportada: %s", charset)
}

// parseFlag acepta true/false, 1/0 y si/no. Vacío es false.
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return false, nil
	case "si", "sí":
		return true, nil
	case "no":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
