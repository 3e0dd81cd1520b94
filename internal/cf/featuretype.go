package cf

import (
	"strings"

	"github.com/coastwatch-labs/catalog/internal/cdm"
)

// FeatureType drives which geometry strategy applies.
type FeatureType int

const (
	GridOrOther FeatureType = iota
	Trajectory
	UnstructuredMesh
)

func (f FeatureType) String() string {
	switch f {
	case Trajectory:
		return "trajectory"
	case UnstructuredMesh:
		return "unstructured_mesh"
	default:
		return "grid_or_other"
	}
}

// DetectFeatureType scans cf_role attributes; the first mesh_topology or
// trajectory_id role found decides.
func DetectFeatureType(ds cdm.Dataset) FeatureType {
	for _, v := range ds.Variables() {
		role, ok := v.Attr("cf_role")
		if !ok {
			continue
		}
		switch role.String() {
		case "mesh_topology":
			return UnstructuredMesh
		case "trajectory_id":
			return Trajectory
		}
	}
	return GridOrOther
}

// AssetType returns the human readable asset type: featureType, else
// cdm_data_type, else the adapter's own type tag.
func AssetType(ds cdm.Dataset) string {
	globals := ds.GlobalAttributes()
	if v, ok := globals.Lookup("featureType"); ok {
		return CommonName(v.String())
	}
	if v, ok := globals.Lookup("cdm_data_type"); ok {
		return CommonName(v.String())
	}
	return CommonName(strings.ToUpper(ds.DataType()))
}

var commonNames = map[string]string{
	"":           "Unspecified",
	"None":       "Unspecified",
	"NONE":       "Unspecified",
	"UNKNOWN":    "Unspecified",
	"(NONE)":     "Unspecified",
	"grid":       "Regular Grid",
	"Grid":       "Regular Grid",
	"GRID":       "Regular Grid",
	"RGRID":      "Regular Grid",
	"CGRID":      "Curvilinear Grid",
	"trajectory": "Trajectory",
	"Trajectory": "Trajectory",
	"point":      "Point",
	"Point":      "Point",
	"ugrid":      "Unstructured Grid",
	"UGRID":      "Unstructured Grid",
	"BUOY":       "Buoy",
	"timeSeries": "Time Series",
	"TimeSeries": "Time Series",
}

// CommonName maps a feature/data type tag to its catalog label.
// Unknown tags pass through unchanged.
func CommonName(tag string) string {
	if name, ok := commonNames[tag]; ok {
		return name
	}
	return tag
}
