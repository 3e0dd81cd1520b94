package redis

import "fmt"

const (
	// KeyPrefixService is the prefix for service keys
	KeyPrefixService = "catalog:service:"
	// KeyAllServices is the key for the set of all service IDs
	KeyAllServices = "catalog:services:all"
	// KeyPrefixDataset is the prefix for dataset keys
	KeyPrefixDataset = "catalog:dataset:"
	// KeyAllDatasets is the key for the set of all dataset UIDs
	KeyAllDatasets = "catalog:datasets:all"
	// KeyPrefixMetadata is the prefix for metadata keys
	KeyPrefixMetadata = "catalog:metadata:"
	// KeyPrefixHarvest is the prefix for harvest record keys
	KeyPrefixHarvest = "catalog:harvest:"
	// KeyHarvestQueue is the list backing the harvest job queue
	KeyHarvestQueue = "catalog:queue:harvest"
)

// ServiceKey returns the Redis key for a service by ID
func ServiceKey(id string) string {
	return KeyPrefixService + id
}

// AllServicesKey returns the key for the set of all service IDs
func AllServicesKey() string {
	return KeyAllServices
}

// ServiceDatasetsKey returns the set of dataset UIDs a service contributed to
func ServiceDatasetsKey(serviceID string) string {
	return KeyPrefixService + serviceID + ":datasets"
}

// DatasetKey returns the Redis key for a dataset by UID
func DatasetKey(uid string) string {
	return KeyPrefixDataset + uid
}

// AllDatasetsKey returns the key for the set of all dataset UIDs
func AllDatasetsKey() string {
	return KeyAllDatasets
}

// MetadataKey returns the Redis key for the metadata of a reference object
func MetadataKey(refID, refType string) string {
	return KeyPrefixMetadata + refType + ":" + refID
}

// HarvestKey returns the Redis key for the harvest record of a service
func HarvestKey(serviceID string) string {
	return KeyPrefixHarvest + serviceID
}

// ExtractServiceID extracts the service ID from a Redis key
func ExtractServiceID(key string) (string, error) {
	if len(key) <= len(KeyPrefixService) || key[:len(KeyPrefixService)] != KeyPrefixService {
		return "", fmt.Errorf("invalid service key: %s", key)
	}
	return key[len(KeyPrefixService):], nil
}
