// Package criteria 保存每个分类的评分维度配置
package criteria

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinScore  = 0.0
	MaxScore  = 5.0
	ScoreStep = 0.25
)

// Criterion 单个评分维度
type Criterion struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Set 某个分类的全部评分维度
type Set struct {
	Category string      `json:"category"`
	Criteria []Criterion `json:"criteria"`
}

var labels = map[string][]string{
	"Películas":      {"Interpretación", "Guion", "Producción", "Originalidad", "Música"},
	"Series":         {"Interpretación", "Guion", "Producción", "Originalidad", "Música"},
	"Música":         {"Composición", "Letra", "Producción", "Originalidad", "Impacto Emocional"},
	"Comida":         {"Sabor", "Presentación", "Calidad Ingredientes", "Servicio", "Relación Calidad-Precio"},
	"Viajes":         {"Belleza/Paisajes", "Cultura/Historia", "Gastronomía", "Actividades", "Accesibilidad"},
	"Libros":         {"Narrativa", "Personajes", "Trama", "Originalidad", "Impacto"},
	"Deportes":       {"Habilidad Técnica", "Espectacularidad", "Impacto en el Deporte", "Legado", "Consistencia"},
	"Juegos":         {"Jugabilidad", "Gráficos", "Historia", "Originalidad", "Rejugabilidad"},
	"Videojuegos":    {"Jugabilidad", "Gráficos", "Historia", "Originalidad", "Rejugabilidad"},
	"Juegos de mesa": {"Mecánicas", "Estrategia", "Diversión", "Rejugabilidad", "Componentes"},
	"Escape room":    {"Enigmas", "Ambientación", "Dificultad", "Originalidad", "Inmersión"},
}

var table = buildTable()

func buildTable() map[string]Set {
	t := make(map[string]Set, len(labels))
	for category, ls := range labels {
		set := Set{Category: category}
		for _, l := range ls {
			set.Criteria = append(set.Criteria, Criterion{Key: Key(l), Label: l})
		}
		t[category] = set
	}
	return t
}

// Key turns a criterion label into its storage key:
// lowercased, accents stripped, "/" and spaces replaced with "_".
func Key(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, label)
	if err != nil {
		s = label
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "/", "_")
	return strings.Join(strings.Fields(s), "_")
}

// Lookup 按分类名查找评分维度；未配置的分类返回 false
func Lookup(category string) (Set, bool) {
	s, ok := table[category]
	return s, ok
}

// All 返回全部配置，按分类名排序
func All() []Set {
	out := make([]Set, 0, len(table))
	for _, s := range table {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Names 返回已配置评分维度的分类名
func Names() []string {
	sets := All()
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Category
	}
	return names
}

func (s Set) has(key string) bool {
	for _, c := range s.Criteria {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Validate checks that every key belongs to the set and every score
// lies in [0,5] on a 0.25 grid.
func (s Set) Validate(ratings map[string]float64) error {
	for key, v := range ratings {
		if !s.has(key) {
			return fmt.Errorf("unknown criterion %q for category %s", key, s.Category)
		}
		if v < MinScore || v > MaxScore {
			return fmt.Errorf("criterion %q out of range: %v", key, v)
		}
		if steps := v / ScoreStep; math.Abs(steps-math.Round(steps)) > 1e-9 {
			return fmt.Errorf("criterion %q must be a multiple of %v", key, ScoreStep)
		}
	}
	return nil
}

// Average 把 0-5 分的维度平均值换算为 0-10 分，保留一位小数
func Average(ratings map[string]float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, v := range ratings {
		sum += v
	}
	return math.Round(sum/float64(len(ratings))*2*10) / 10
}
