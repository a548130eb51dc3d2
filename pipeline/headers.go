package pipeline

import (
	"strings"

	"addresscleaner/normalization"
)

// Группы ключевых слов классификации заголовков. Порядок внутри группы —
// тай-брейк при нескольких совпадениях. Заголовок может попасть в несколько
// групп сразу ("direccion y telefono"), это допустимо.
var (
	addressKeywords = []string{"direccion", "address", "domicilio", "calle", "ubicacion", "avenida", "barrio"}
	cityKeywords    = []string{"ciudad", "city", "localidad", "municipio"}
	stateKeywords   = []string{"departamento", "depto", "dpto", "estado", "state", "provincia", "region"}
	phoneKeywords   = []string{"telefono", "tel", "phone", "celular", "cel", "movil", "whatsapp"}
	emailKeywords   = []string{"mail", "correo"}
)

// headerClasses — результат классификации: упорядоченные списки заголовков
// по семантическим типам.
type headerClasses struct {
	address []string
	city    []string
	state   []string
	phone   []string
	email   []string
}

// classifyHeaders раскладывает заголовки по группам подстрочным совпадением
// по нормализованному ключу (без регистра и диакритики).
func classifyHeaders(headers []string) headerClasses {
	var c headerClasses
	for _, h := range headers {
		key := normalization.NormalizeKey(h)
		if matchesAny(key, addressKeywords) {
			c.address = append(c.address, h)
		}
		if matchesAny(key, cityKeywords) {
			c.city = append(c.city, h)
		}
		if matchesAny(key, stateKeywords) {
			c.state = append(c.state, h)
		}
		if matchesAny(key, phoneKeywords) {
			c.phone = append(c.phone, h)
		}
		if matchesAny(key, emailKeywords) {
			c.email = append(c.email, h)
		}
	}
	return c
}

func matchesAny(key string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// classified сообщает, попал ли заголовок хотя бы в одну группу.
func (c headerClasses) classified(header string) bool {
	for _, group := range [][]string{c.address, c.city, c.state, c.phone, c.email} {
		for _, h := range group {
			if h == header {
				return true
			}
		}
	}
	return false
}

// looksLikeAddress — эвристика запасного поиска адреса в неклассифицированных
// колонках: адресное ключевое слово либо цифра с пробелом рядом.
func looksLikeAddress(value string) bool {
	key := normalization.NormalizeKey(value)
	if key == "" {
		return false
	}
	for _, kw := range []string{"avenida", "avda", "calle", "ruta", "esquina", "barrio", "edificio", "km"} {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return containsDigitSpace(key)
}

func containsDigitSpace(s string) bool {
	prev := rune(0)
	for _, r := range s {
		if (prev >= '0' && prev <= '9' && r == ' ') || (prev == ' ' && r >= '0' && r <= '9') {
			return true
		}
		prev = r
	}
	return false
}
