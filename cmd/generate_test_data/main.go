// generate_test_data генерирует правдоподобно грязные экспорты заказов
// для нагрузочных прогонов конвейера очистки.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/brianvoe/gofakeit/v6"

	"addresscleaner/csvcodec"
)

var streets = []string{
	"avda mcal lopez", "Av. España", "ruta 2 km 25", "Palma c/ 14 de Mayo",
	"calle ultima / defensores del chaco", "Gral. Santos esq. Concordia",
	"tte vera 1540", "avda espana c/ brasil", "Mcal. Estigarribia 890",
}

var cities = []string{
	"asuncion", "Asunción", "ASU", "cde", "Ciudad del Este", "san lorenso",
	"Luque", "lambare", "Encarnacion", "pjc", "fdo de la mora", "guaira", "",
}

var states = []string{
	"central", "Central", "Alto Parana", "itapua", "paraguay", "capital", "", "",
}

var phoneFormats = []string{
	"0981 %d", "+595 981 %d", "(021) %d", "595 21 %d", "09%d / 021 555000",
	"0971-%d int 2", "%d",
}

var noise = []string{
	"", "", "", " sin datos", " XXXX", " casa particular", " correo paraguayo cp-1209",
}

func main() {
	gofakeit.Seed(0)

	sizes := []struct {
		name string
		size int
	}{
		{"100", 100},
		{"1K", 1000},
		{"10K", 10000},
	}

	dataDir := filepath.Join("tests", "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	headers := []string{"direccion", "ciudad", "departamento", "telefono", "correo", "notas"}
	for _, size := range sizes {
		fmt.Printf("Generating %s records...\n", size.name)

		rows := make([]map[string]string, size.size)
		for i := 0; i < size.size; i++ {
			rows[i] = generateRow()
		}

		outPath := filepath.Join(dataDir, fmt.Sprintf("orders_%s.csv", size.name))
		if err := os.WriteFile(outPath, []byte(csvcodec.Serialize(rows, headers)), 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", outPath, err)
		}
		fmt.Printf("Wrote %s\n", outPath)
	}
}

// generateRow собирает одну грязную строку: адрес с шумом, иногда с
// зашитой почтой или телефоном, город и департамент в случайных написаниях.
func generateRow() map[string]string {
	address := pick(streets)
	if gofakeit.Number(0, 9) < 2 {
		// Почта, зарытая в адрес
		address = gofakeit.Email() + " " + address
	}
	if gofakeit.Number(0, 9) < 2 {
		// Город в хвосте адреса вместо своей колонки
		address = address + ", " + pick(cities) + ", " + pick(states)
	}
	address += pick(noise)

	phone := ""
	if gofakeit.Number(0, 9) < 8 {
		phone = fmt.Sprintf(pick(phoneFormats), gofakeit.Number(100000, 999999))
	}

	email := ""
	if gofakeit.Number(0, 9) < 4 {
		email = gofakeit.Email()
	}

	notes := ""
	if gofakeit.Number(0, 9) < 3 {
		notes = "entregar a " + gofakeit.FirstName() + " tel " + fmt.Sprintf("09%d %d", gofakeit.Number(60, 99), gofakeit.Number(100000, 999999))
	}

	return map[string]string{
		"direccion":    address,
		"ciudad":       pick(cities),
		"departamento": pick(states),
		"telefono":     phone,
		"correo":       email,
		"notas":        notes,
	}
}

func pick(values []string) string {
	return values[gofakeit.Number(0, len(values)-1)]
}
