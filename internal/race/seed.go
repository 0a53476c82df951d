package race

import (
	"fmt"
	"time"
)

const driverPhotoBase = "https://media.formula1.com/d_driver_fallback_image.png/content/dam/fom-website/drivers/2024Drivers/"

// SeedDrivers is the starting driver market: the 2024 field with static
// ranks, baseline prices, and the attribute sheet settlement scoring reads.
func SeedDrivers() []Driver {
	rows := []struct {
		ID          string
		Name        string
		Number      int
		Team        string
		TeamColor   string
		Nationality string
		Photo       string
		Price       int64
		Rank        int
		Risk        RiskTier
		Attrs       DriverAttributes
	}{
		{"max_verstappen", "Max Verstappen", 1, "Red Bull Racing", "#3671C6", "Dutch", "verstappen.jpg", 5500, 1, RiskLow, DriverAttributes{98, 90, 75, 96, 95}},
		{"sergio_perez", "Sergio Perez", 11, "Red Bull Racing", "#3671C6", "Mexican", "perez.jpg", 3200, 2, RiskMedium, DriverAttributes{85, 88, 68, 78, 87}},
		{"lewis_hamilton", "Lewis Hamilton", 44, "Mercedes", "#27F4D2", "British", "hamilton.jpg", 4800, 3, RiskLow, DriverAttributes{94, 99, 70, 92, 99}},
		{"george_russell", "George Russell", 63, "Mercedes", "#27F4D2", "British", "russell.jpg", 3400, 4, RiskMedium, DriverAttributes{89, 75, 82, 85, 82}},
		{"charles_leclerc", "Charles Leclerc", 16, "Ferrari", "#E8002D", "Monegasque", "leclerc.jpg", 4200, 5, RiskMedium, DriverAttributes{96, 78, 88, 82, 93}},
		{"carlos_sainz", "Carlos Sainz", 55, "Ferrari", "#E8002D", "Spanish", "sainz.jpg", 3600, 6, RiskLow, DriverAttributes{88, 82, 72, 89, 85}},
		{"lando_norris", "Lando Norris", 4, "McLaren", "#FF8000", "British", "norris.jpg", 3800, 7, RiskLow, DriverAttributes{92, 76, 79, 90, 94}},
		{"oscar_piastri", "Oscar Piastri", 81, "McLaren", "#FF8000", "Australian", "piastri.jpg", 2800, 8, RiskMedium, DriverAttributes{90, 62, 74, 88, 80}},
		{"fernando_alonso", "Fernando Alonso", 14, "Aston Martin", "#229971", "Spanish", "alonso.jpg", 3300, 9, RiskMedium, DriverAttributes{87, 99, 85, 92, 91}},
		{"lance_stroll", "Lance Stroll", 18, "Aston Martin", "#229971", "Canadian", "stroll.jpg", 2200, 10, RiskHigh, DriverAttributes{78, 76, 84, 65, 62}},
		{"pierre_gasly", "Pierre Gasly", 10, "Alpine", "#FF87BC", "French", "gasly.jpg", 2400, 11, RiskMedium, DriverAttributes{81, 78, 79, 76, 75}},
		{"esteban_ocon", "Esteban Ocon", 31, "Alpine", "#FF87BC", "French", "ocon.jpg", 2300, 12, RiskMedium, DriverAttributes{80, 79, 86, 74, 72}},
		{"alexander_albon", "Alexander Albon", 23, "Williams", "#64C4FF", "Thai", "albon.jpg", 2500, 13, RiskMedium, DriverAttributes{85, 74, 72, 85, 80}},
		{"logan_sargeant", "Logan Sargeant", 2, "Williams", "#64C4FF", "American", "sargeant.jpg", 1800, 14, RiskHigh, DriverAttributes{75, 58, 70, 68, 65}},
		{"yuki_tsunoda", "Yuki Tsunoda", 22, "RB", "#6692FF", "Japanese", "tsunoda.jpg", 2100, 15, RiskHigh, DriverAttributes{84, 68, 92, 71, 82}},
		{"daniel_ricciardo", "Daniel Ricciardo", 3, "RB", "#6692FF", "Australian", "ricciardo.jpg", 2600, 16, RiskMedium, DriverAttributes{80, 92, 70, 78, 98}},
		{"nico_hulkenberg", "Nico Hulkenberg", 27, "Haas", "#B6BABD", "German", "hulkenberg.jpg", 2200, 17, RiskMedium, DriverAttributes{85, 86, 72, 88, 72}},
		{"kevin_magnussen", "Kevin Magnussen", 20, "Haas", "#B6BABD", "Danish", "magnussen.jpg", 1900, 18, RiskHigh, DriverAttributes{81, 82, 94, 68, 74}},
		{"valtteri_bottas", "Valtteri Bottas", 77, "Sauber", "#52E252", "Finnish", "bottas.jpg", 2400, 19, RiskMedium, DriverAttributes{80, 88, 65, 82, 78}},
		{"guanyu_zhou", "Guanyu Zhou", 24, "Sauber", "#52E252", "Chinese", "zhou.jpg", 1700, 20, RiskHigh, DriverAttributes{76, 68, 65, 78, 70}},
	}

	drivers := make([]Driver, 0, len(rows))
	for _, r := range rows {
		drivers = append(drivers, Driver{
			ID:          r.ID,
			Name:        r.Name,
			Number:      r.Number,
			Team:        r.Team,
			TeamColor:   r.TeamColor,
			Photo:       driverPhotoBase + r.Photo,
			Nationality: r.Nationality,
			BasePrice:   r.Price,
			Price:       r.Price,
			Rank:        r.Rank,
			Risk:        r.Risk,
			Attributes:  r.Attrs,
		})
	}
	return drivers
}

// SeedSchedule is the season calendar: one race a day at the clock's race
// hour, starting on the season's first day.
func SeedSchedule(clock Clock) []ScheduledRace {
	circuits := []struct {
		Name    string
		Circuit Circuit
		Laps    int
	}{
		{"Bahrain Grand Prix", Circuit{"bahrain", "Bahrain International Circuit", "Sakhir", "Bahrain", 5.412}, 57},
		{"Saudi Arabian Grand Prix", Circuit{"jeddah", "Jeddah Corniche Circuit", "Jeddah", "Saudi Arabia", 6.174}, 50},
		{"Australian Grand Prix", Circuit{"albert_park", "Albert Park Circuit", "Melbourne", "Australia", 5.278}, 58},
		{"Japanese Grand Prix", Circuit{"suzuka", "Suzuka International Racing Course", "Suzuka", "Japan", 5.807}, 53},
		{"Chinese Grand Prix", Circuit{"shanghai", "Shanghai International Circuit", "Shanghai", "China", 5.451}, 56},
		{"Miami Grand Prix", Circuit{"miami", "Miami International Autodrome", "Miami", "USA", 5.412}, 57},
		{"Emilia Romagna Grand Prix", Circuit{"imola", "Autodromo Enzo e Dino Ferrari", "Imola", "Italy", 4.909}, 63},
		{"Monaco Grand Prix", Circuit{"monaco", "Circuit de Monaco", "Monte Carlo", "Monaco", 3.337}, 78},
		{"Canadian Grand Prix", Circuit{"villeneuve", "Circuit Gilles Villeneuve", "Montreal", "Canada", 4.361}, 70},
		{"Spanish Grand Prix", Circuit{"catalunya", "Circuit de Barcelona-Catalunya", "Montmeló", "Spain", 4.675}, 66},
		{"Austrian Grand Prix", Circuit{"red_bull_ring", "Red Bull Ring", "Spielberg", "Austria", 4.318}, 71},
		{"British Grand Prix", Circuit{"silverstone", "Silverstone Circuit", "Silverstone", "UK", 5.891}, 52},
	}

	firstStart := clock.DailyRaceStart(clock.SeasonStart)
	races := make([]ScheduledRace, 0, len(circuits))
	for i, c := range circuits {
		races = append(races, ScheduledRace{
			ID:            fmt.Sprintf("race_%d", i+1),
			Round:         i + 1,
			RaceName:      c.Name,
			Circuit:       c.Circuit,
			ScheduledTime: firstStart.Add(time.Duration(i) * 24 * time.Hour),
			Status:        StatusUpcoming,
			Laps:          c.Laps,
		})
	}
	return races
}
