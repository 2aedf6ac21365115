package transit

// Mode tags reported by the upstream.
const (
	ModeTram              = "Tram"
	ModeCityBus           = "CityBus"
	ModeIntercityBus      = "IntercityBus"
	ModeSuburbanRailway   = "SuburbanRailway"
	ModeTrain             = "Train"
	ModeCableway          = "Cableway"
	ModeFerry             = "Ferry"
	ModeHailedSharedTaxi  = "HailedSharedTaxi"
	ModeFootpath          = "Footpath"
	ModeStairsUp          = "StairsUp"
	ModeStairsDown        = "StairsDown"
	ModeEscalatorUp       = "EscalatorUp"
	ModeEscalatorDown     = "EscalatorDown"
	ModeElevatorUp        = "ElevatorUp"
	ModeElevatorDown      = "ElevatorDown"
	ModeStayForConnection = "StayForConnection"
	ModeStayInVehicle     = "StayInVehicle"
)

var modeTitles = map[string]string{
	ModeTram:              "Straßenbahn",
	ModeCityBus:           "Bus",
	ModeIntercityBus:      "Regionalbus",
	ModeSuburbanRailway:   "S-Bahn",
	ModeTrain:             "Zug",
	ModeCableway:          "Seil-/Schwebebahn",
	ModeFerry:             "Fähre",
	ModeHailedSharedTaxi:  "Anrufsammeltaxi",
	ModeFootpath:          "Fussweg",
	ModeStairsUp:          "Treppe aufwärts",
	ModeStairsDown:        "Treppe abwärts",
	ModeEscalatorUp:       "Rolltreppe aufwärts",
	ModeEscalatorDown:     "Rolltreppe abwärts",
	ModeElevatorUp:        "Fahrstuhl aufwärts",
	ModeElevatorDown:      "Fahrstuhl abwärts",
	ModeStayForConnection: "gesicherter Anschluss",
	ModeStayInVehicle:     "Verbleiben im Fahrzeug",
}

// LookupMode maps an upstream mode tag to a Mode. Unknown tags are kept as
// both name and title.
func LookupMode(tag string) Mode {
	if title, ok := modeTitles[tag]; ok {
		return Mode{Name: tag, Title: title}
	}
	return Mode{Name: tag, Title: tag}
}
