package cf

// Standard names that describe coordinates rather than measured quantities.
var axisStandardNames = setOf(
	"latitude",
	"longitude",
	"time",
	"forecast_reference_time",
	"forecast_period",
	"ocean_sigma",
	"ocean_s_coordinate_g1",
	"ocean_s_coordinate_g2",
	"ocean_s_coordinate",
	"ocean_double_sigma",
	"ocean_sigma_over_z",
	"projection_y_coordinate",
	"projection_x_coordinate",
)

var metadataVariableNames = []string{"crs", "projection"}

// "lon_v  " keeps its trailing spaces; see DESIGN.md.
var commonAxisNames = []string{
	"x", "y", "lat", "latitude", "lon", "longitude", "time", "time_run",
	"time_offset", "ntimes", "lat_u", "lon_u", "lat_v", "lon_v  ",
	"lat_rho", "lon_rho", "lat_psi",
}

// Candidate coordinate names probed by the dataset access library.
var (
	possibleT = []string{
		"time", "TIME", "Time", "t", "T", "ocean_time", "OCEAN_TIME", "jd", "JD",
		"dn", "DN", "times", "TIMES", "Times", "mt", "MT", "dt", "DT",
	}
	possibleZ = []string{
		"depth", "DEPTH", "depths", "DEPTHS", "height", "HEIGHT", "altitude",
		"ALTITUDE", "alt", "ALT", "Alt", "Altitude", "h", "H", "s_rho", "S_RHO",
		"s_w", "S_W", "z", "Z", "siglay", "SIGLAY", "siglev", "SIGLEV", "sigma",
		"SIGMA", "vertical", "VERTICAL", "lev", "LEV", "level", "LEVEL",
	}
	possibleX = []string{
		"x", "X", "lon", "LON", "xlon", "XLON", "lonx", "lon_u", "LON_U", "lon_v",
		"LON_V", "lonc", "LONC", "Lon", "Longitude", "longitude", "LONGITUDE",
		"lon_rho", "LON_RHO", "lon_psi", "LON_PSI",
	}
	possibleY = []string{
		"y", "Y", "lat", "LAT", "ylat", "YLAT", "laty", "lat_u", "LAT_U", "lat_v",
		"LAT_V", "latc", "LATC", "Lat", "Latitude", "latitude", "LATITUDE",
		"lat_rho", "LAT_RHO", "lat_psi", "LAT_PSI",
	}
)

// excludedNames is every name never reported as a non-standard variable.
var excludedNames = func() map[string]struct{} {
	out := make(map[string]struct{})
	for _, list := range [][]string{metadataVariableNames, commonAxisNames, possibleT, possibleZ, possibleX, possibleY} {
		for _, n := range list {
			out[n] = struct{}{}
		}
	}
	return out
}()

func setOf(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
