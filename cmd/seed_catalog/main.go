// seed_catalog genera la migración SQL que carga ubicaciones y materiales
// a partir de la exportación XML del catálogo.
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.xml]
// Por defecto busca catalogo.xml en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/000002_seed_catalog.{up,down}.sql
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/Logistica-api/internal/infrastructure/catalogxml"
)

func main() {
	xmlPath := "catalogo.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	cat, err := catalogxml.Load(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	dir := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations")
	upPath := filepath.Join(dir, "000002_seed_catalog.up.sql")
	downPath := filepath.Join(dir, "000002_seed_catalog.down.sql")

	if err := writeFile(upPath, func(w io.Writer) { writeUp(w, cat, filepath.Base(xmlPath)) }); err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	if err := writeFile(downPath, func(w io.Writer) { writeDown(w, cat) }); err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generado %s: %d ubicaciones, %d materiales\n", upPath, len(cat.Locations), len(cat.Materials))
}

func writeFile(path string, fill func(w io.Writer)) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	fill(out)
	return out.Close()
}

// writeUp escribe los upserts. Volver a correr la migración con un catálogo nuevo actualiza nombres y banderas.
func writeUp(w io.Writer, cat *catalogxml.Catalog, source string) {
	fmt.Fprintf(w, "-- Catálogo de ubicaciones y materiales\n-- Generado desde %s\n\n", source)

	if len(cat.Locations) > 0 {
		io.WriteString(w, "-- 1. Ubicaciones\n")
		io.WriteString(w, "INSERT INTO locations (id, code, name, is_yard, evidence_exempt) VALUES\n")
		for i, l := range cat.Locations {
			fmt.Fprintf(w, "  ('%s', '%s', '%s', %t, %t)%s\n",
				escapeSQL(l.ID), escapeSQL(l.Code), escapeSQL(l.Name), l.IsYard, l.EvidenceExempt, sep(i, len(cat.Locations)))
		}
		io.WriteString(w, "ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name,\n")
		io.WriteString(w, "  is_yard = EXCLUDED.is_yard, evidence_exempt = EXCLUDED.evidence_exempt, updated_at = now();\n\n")
	}

	if len(cat.Materials) > 0 {
		io.WriteString(w, "-- 2. Materiales\n")
		io.WriteString(w, "INSERT INTO materials (id, code, name) VALUES\n")
		for i, m := range cat.Materials {
			fmt.Fprintf(w, "  ('%s', '%s', '%s')%s\n", escapeSQL(m.ID), escapeSQL(m.Code), escapeSQL(m.Name), sep(i, len(cat.Materials)))
		}
		io.WriteString(w, "ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name;\n")
	}
}

// writeDown borra solo lo que no tenga documentos ni libro apuntándole.
func writeDown(w io.Writer, cat *catalogxml.Catalog) {
	io.WriteString(w, "-- Revierte 000002_seed_catalog\n")
	if len(cat.Materials) > 0 {
		fmt.Fprintf(w, "DELETE FROM materials m WHERE m.id IN (%s)\n", idList(len(cat.Materials), func(i int) string { return cat.Materials[i].ID }))
		io.WriteString(w, "  AND NOT EXISTS (SELECT 1 FROM document_lines l WHERE l.material_id = m.id)\n")
		io.WriteString(w, "  AND NOT EXISTS (SELECT 1 FROM stock_transfers t WHERE t.material_id = m.id)\n")
		io.WriteString(w, "  AND NOT EXISTS (SELECT 1 FROM inventory_entries e WHERE e.material_id = m.id);\n")
	}
	if len(cat.Locations) > 0 {
		fmt.Fprintf(w, "DELETE FROM locations l WHERE l.id IN (%s)\n", idList(len(cat.Locations), func(i int) string { return cat.Locations[i].ID }))
		io.WriteString(w, "  AND NOT EXISTS (SELECT 1 FROM documents d WHERE d.origin_id = l.id OR d.destination_id = l.id)\n")
		io.WriteString(w, "  AND NOT EXISTS (SELECT 1 FROM document_lines dl WHERE dl.counterparty_id = l.id)\n")
		io.WriteString(w, "  AND NOT EXISTS (SELECT 1 FROM stock_transfers t WHERE t.origin_id = l.id OR t.destination_id = l.id)\n")
		io.WriteString(w, "  AND NOT EXISTS (SELECT 1 FROM inventory_entries e WHERE e.location_id = l.id);\n")
	}
}

func idList(n int, id func(i int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "'" + escapeSQL(id(i)) + "'"
	}
	return strings.Join(parts, ", ")
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
