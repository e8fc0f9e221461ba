package campground

// IsEligible reports whether the site can take the party, independent of dates.
// A site without a recorded max vehicle length never excludes a vehicle.
func IsEligible(site Site, partySize int, vehicleLength *int) bool {
	if !site.IsActive {
		return false
	}
	if partySize > site.MaxGuests {
		return false
	}
	if vehicleLength != nil && site.MaxVehicleLength != nil && *vehicleLength > *site.MaxVehicleLength {
		return false
	}
	return true
}

// matchesType is the optional category filter; an empty filter matches all.
func matchesType(site Site, t SiteType) bool {
	return t == "" || site.Type == t
}
