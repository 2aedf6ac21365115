package transit

// StopDisplayName renders a stop as "<name> <city>".
func StopDisplayName(stop StopLocation) string {
	return stop.Name + " " + stop.City
}

// SimplifyStop converts a stop visit to its display form.
func SimplifyStop(stop Stop) SimpleStop {
	return SimpleStop{
		Stop:     StopDisplayName(stop.StopLocation),
		Platform: stop.Platform,
		Time:     stop.Time,
	}
}

// SimplifyNode converts a node to its display form. Only the mode title is kept.
func SimplifyNode(node Node) SimpleNode {
	return SimpleNode{
		Line:      node.Line,
		Direction: node.Direction,
		Duration:  node.Duration,
		Mode:      node.Mode.Title,
		Departure: SimplifyStop(node.Departure),
		Arrival:   SimplifyStop(node.Arrival),
	}
}

// isTransfer reports whether a mode tag marks a walking transition between
// vehicles. The set is exact and case-sensitive.
func isTransfer(modeName string) bool {
	return modeName == ModeFootpath || modeName == ModeStairsUp
}

// SimplifyNodes drops footpath and stairs-up nodes and simplifies the rest in order.
func SimplifyNodes(nodes []Node) []SimpleNode {
	out := make([]SimpleNode, 0, len(nodes))
	for i := range nodes {
		if isTransfer(nodes[i].Mode.Name) {
			continue
		}
		out = append(out, SimplifyNode(nodes[i]))
	}
	return out
}

// SimplifyTrip converts a trip to its display form.
func SimplifyTrip(trip Trip) SimpleTrip {
	return SimpleTrip{
		Departure:    SimplifyStop(trip.Departure),
		Arrival:      SimplifyStop(trip.Arrival),
		Duration:     trip.Duration,
		Interchanges: trip.Interchanges,
		Nodes:        SimplifyNodes(trip.Nodes),
	}
}

// SimplifyRoute converts a route to its display form. Trips are never dropped.
func SimplifyRoute(route Route) SimpleRoute {
	trips := make([]SimpleTrip, 0, len(route.Trips))
	for i := range route.Trips {
		trips = append(trips, SimplifyTrip(route.Trips[i]))
	}
	return SimpleRoute{
		Origin:      StopDisplayName(route.Origin),
		Destination: StopDisplayName(route.Destination),
		Trips:       trips,
	}
}
