package quiz

import (
	"github.com/google/uuid"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// bankNamespace scopes question IDs so reseeding yields the same IDs.
var bankNamespace = uuid.MustParse("6f1c9a52-2d0e-4d55-9b1e-8c3f5a7e2b10")

type entry struct {
	subject string
	text    string
	options []string
	correct int
}

var bank = []entry{
	{"Climate Science", "Which gas is most abundant in the Earth's atmosphere?", []string{"Oxygen", "Nitrogen", "Carbon Dioxide", "Argon"}, 1},
	{"Climate Science", "What is the primary cause of global warming?", []string{"Deforestation", "Volcanic Eruptions", "Fossil Fuels", "Solar Flares"}, 2},
	{"Climate Science", "What is the main greenhouse gas emitted by human activities?", []string{"Methane", "Carbon Dioxide", "Nitrous Oxide", "Ozone"}, 1},
	{"Climate Science", "Which of these gases traps the most heat per molecule?", []string{"CO2", "Methane", "Water Vapor", "Nitrous Oxide"}, 1},
	{"Climate Science", "How much has the global temperature risen since the late 19th century?", []string{"0.5°C", "1.1°C", "2.0°C", "3.5°C"}, 1},
	{"Climate Science", "What is the term for cities getting hotter than rural areas?", []string{"Heat Wave", "Urban Heat Island", "Global Warming", "Greenhouse Effect"}, 1},
	{"Climate Science", "What does 'net zero' mean?", []string{"Zero emissions", "Balancing emissions with removal", "No new factories", "Stopping all travel"}, 1},
	{"Climate Change", "What percentage of global greenhouse gas emissions come from transportation?", []string{"10%", "14%", "24%", "35%"}, 2},
	{"Climate Change", "What is the Paris Agreement's main goal?", []string{"Limit global warming to 1.5°C", "Ban fossil fuels by 2030", "Plant 1 trillion trees", "Reduce plastic waste"}, 0},
	{"Climate Change", "Which country currently emits the most CO2?", []string{"USA", "China", "India", "Russia"}, 1},
	{"Oceans", "What is the main cause of ocean acidification?", []string{"Plastic pollution", "CO2 absorption", "Oil spills", "Overfishing"}, 1},
	{"Oceans", "What is 'The Great Pacific Garbage Patch' mostly made of?", []string{"Metal", "Glass", "Plastic", "Paper"}, 2},
	{"Oceans", "Which animal is most threatened by melting sea ice?", []string{"Penguin", "Polar Bear", "Seal", "Whale"}, 1},
	{"Oceans", "What percentage of the Earth's water is fresh water?", []string{"1%", "3%", "10%", "25%"}, 1},
	{"Oceans", "Which renewable energy source relies on the moon's gravity?", []string{"Solar", "Wind", "Tidal", "Geothermal"}, 2},
	{"Renewable Energy", "Which renewable energy source is the fastest growing globally?", []string{"Wind", "Solar", "Hydro", "Geothermal"}, 1},
	{"Renewable Energy", "Which country produces the most renewable energy?", []string{"China", "USA", "Germany", "India"}, 0},
	{"Energy Efficiency", "How much energy can LED bulbs save compared to incandescent bulbs?", []string{"25%", "50%", "75%", "90%"}, 2},
	{"Energy Efficiency", "Which appliance typically uses the most electricity in a home?", []string{"Refrigerator", "Air conditioner", "Water heater", "Television"}, 1},
	{"Environment", "How much CO2 does an average tree absorb per year?", []string{"10 kg", "22 kg", "48 kg", "100 kg"}, 2},
	{"Environment", "How long does it take for a plastic bottle to decompose?", []string{"50 years", "100 years", "450 years", "1000 years"}, 2},
	{"Sustainability", "What is the most effective way to reduce your carbon footprint?", []string{"Recycling", "Using public transport", "Eating less meat", "Reducing air travel"}, 3},
	{"Sustainability", "Which sector uses the most water globally?", []string{"Agriculture", "Industry", "Domestic use", "Energy production"}, 0},
	{"Sustainability", "Which diet has the lowest carbon footprint?", []string{"Paleo", "Vegan", "Vegetarian", "Pescatarian"}, 1},
	{"Recycling", "What is the most recycled material in the world?", []string{"Paper", "Plastic", "Glass", "Steel"}, 3},
	{"Recycling", "What is the best way to reduce plastic waste?", []string{"Recycling", "Burning", "Reducing & Reusing", "Burying"}, 2},
}

// Bank returns the bundled question bank. IDs are derived from the
// question text, so the same question always gets the same ID.
func Bank() []domain.Question {
	out := make([]domain.Question, len(bank))
	for i, e := range bank {
		opts := make([]string, len(e.options))
		copy(opts, e.options)
		out[i] = domain.Question{
			ID:                 uuid.NewSHA1(bankNamespace, []byte(e.text)).String(),
			Text:               e.text,
			Options:            opts,
			CorrectOptionIndex: e.correct,
			Subject:            e.subject,
		}
	}
	return out
}
