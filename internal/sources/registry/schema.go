package registry

// Config is the root of services.yaml:
//
//	providers:
//	  - name: NOAA NCEI
//	    services:
//	      - name: SST analysis
//	        url: https://data.example.org/thredds/dodsC/sst.nc
//	        type: DAP
type Config struct {
	Providers []Provider `yaml:"providers"`
}

// Provider groups the services of one data provider.
type Provider struct {
	Name     string         `yaml:"name"`
	Services []ServiceProps `yaml:"services"`
}

// ServiceProps contains the actual service properties
type ServiceProps struct {
	// ID is optional; it defaults to a hash of type and URL.
	ID     string `yaml:"id,omitempty"`
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Type   string `yaml:"type"`
	Active *bool  `yaml:"active,omitempty"` // default true
}
