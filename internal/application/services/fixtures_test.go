package services_test

import "github.com/zatekoja/pharmacy-locator/internal/domain/entities"

var lomeUser = entities.Coordinate{Latitude: 6.1304, Longitude: 1.2158}

func lomeCatalog() []entities.Pharmacy {
	return []entities.Pharmacy{
		{ID: "1", Name: "Pharmacie Saint Joseph", Address: "Rue de la Paix, Lomé", Phone: "+228 22 21 20 19", Hours: "8:00 AM - 8:00 PM", IsOpen: true, Location: entities.Coordinate{Latitude: 6.1304, Longitude: 1.2158}},
		{ID: "2", Name: "Pharmacie du Grand Marché", Address: "Grand Marché, Lomé", Phone: "+228 22 21 22 23", Hours: "7:30 AM - 9:00 PM", IsOpen: true, Location: entities.Coordinate{Latitude: 6.1285, Longitude: 1.2203}},
		{ID: "3", Name: "Pharmacie Tokoin", Address: "Tokoin, Lomé", Phone: "+228 22 21 24 25", Hours: "8:00 AM - 7:00 PM", IsOpen: false, Location: entities.Coordinate{Latitude: 6.1350, Longitude: 1.2100}},
		{ID: "4", Name: "Pharmacie de l'Indépendance", Address: "Avenue de l'Indépendance, Lomé", Phone: "+228 22 21 26 27", Hours: "24/7", IsOpen: true, Location: entities.Coordinate{Latitude: 6.1256, Longitude: 1.2250}},
		{ID: "5", Name: "Pharmacie de la Caisse", Address: "Rue des Banques, Lomé", Phone: "+228 22 21 28 29", Hours: "8:30 AM - 8:30 PM", IsOpen: false, Location: entities.Coordinate{Latitude: 6.1320, Longitude: 1.2180}},
	}
}

func ids(results []entities.RankedPharmacy) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}
