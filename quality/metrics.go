// Package quality оценивает полноту нормализации строки: какие поля уже
// приведены к чистому виду, а какие требуют дозапроса к оракулу.
package quality

import (
	"regexp"

	"addresscleaner/extractors"
	"addresscleaner/gazetteer"
)

// emailPattern проверяет адрес почты целиком, а не вхождение в текст.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Metrics — пофлаговая оценка чистоты строки. Каждый флаг отвечает на
// вопрос "это поле уже можно отдавать в выгрузку?".
type Metrics struct {
	AddressCleanDone   bool
	CityNorm           bool
	StateNorm          bool
	PhoneValid         bool
	EmailValidOrAbsent bool
}

// Complete сообщает, что все поля чистые и дозапрос не нужен.
func (m Metrics) Complete() bool {
	return m.AddressCleanDone && m.CityNorm && m.StateNorm &&
		m.PhoneValid && m.EmailValidOrAbsent
}

// Compute оценивает поля строки после детерминированной очистки. Из пяти
// флагов только почта допускает отсутствие значения: пустой адрес, город,
// департамент или телефон означают незавершённую нормализацию и ведут
// строку в запасную стадию.
func Compute(g *gazetteer.Gazetteer, address, city, state, phone, email string) Metrics {
	return Metrics{
		AddressCleanDone:   address != "" && !HasResidualContact(address),
		CityNorm:           city != "" && isCanonicalCity(g, city),
		StateNorm:          state != "" && isCanonicalState(g, state),
		PhoneValid:         extractors.IsValidPhonePY(phone),
		EmailValidOrAbsent: email == "" || IsValidEmail(email),
	}
}

// IsValidEmail проверяет, что значение целиком является адресом почты.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// HasResidualContact сообщает, остались ли в адресной строке почта или
// телефон, которые очистка должна была вынести в свои поля.
func HasResidualContact(address string) bool {
	if gazetteer.EmailPattern.MatchString(address) {
		return true
	}
	return gazetteer.PhonePattern.MatchString(address)
}

// isCanonicalCity — точное совпадение с каноническим списком городов.
func isCanonicalCity(g *gazetteer.Gazetteer, city string) bool {
	m := g.MatchCity(city, "", gazetteer.DefaultThreshold)
	return m.Score == 100 && m.City == city
}

// isCanonicalState — точное совпадение с каноническим списком департаментов.
func isCanonicalState(g *gazetteer.Gazetteer, state string) bool {
	m := g.MatchDepartment(state, gazetteer.DefaultThreshold)
	return m.Score == 100 && m.Value == state
}
