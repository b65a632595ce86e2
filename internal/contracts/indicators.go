package contracts

import (
	"fmt"
	"sort"
)

// IndicatorCategory groups indicators by what they describe
type IndicatorCategory string

const (
	CategoryGeneration IndicatorCategory = "generation"
	CategoryDemand     IndicatorCategory = "demand"
	CategoryPrice      IndicatorCategory = "price"
)

// IndicatorMetadata identifies a source time-series channel
type IndicatorMetadata struct {
	ID         int               `json:"indicator_id"`
	Name       string            `json:"name"`
	ShortName  string            `json:"short_name"`
	Category   IndicatorCategory `json:"category"`
	Technology string            `json:"technology,omitempty"`
	Renewable  bool              `json:"renewable"`
	Variable   bool              `json:"variable"` // VRE: not dispatchable on demand
	Unit       string            `json:"unit"`
}

// KnownIndicators are the ESIOS channels the system knows by default
var KnownIndicators = map[int]IndicatorMetadata{
	1293: {ID: 1293, Name: "Demanda real", ShortName: "Demand", Category: CategoryDemand, Unit: "MW"},
	1161: {ID: 1161, Name: "Generación Solar fotovoltaica", ShortName: "Solar PV", Category: CategoryGeneration, Technology: "solar_pv", Renewable: true, Variable: true, Unit: "MW"},
	1159: {ID: 1159, Name: "Generación Eólica terrestre", ShortName: "Wind Onshore", Category: CategoryGeneration, Technology: "wind_onshore", Renewable: true, Variable: true, Unit: "MW"},
	600:  {ID: 600, Name: "Precio mercado SPOT Diario", ShortName: "Spot Price", Category: CategoryPrice, Unit: "EUR/MWh"},
	1043: {ID: 1043, Name: "Generación total", ShortName: "Total Generation", Category: CategoryGeneration, Unit: "MW"},
}

// LookupIndicator returns known metadata or a generic generation placeholder
func LookupIndicator(id int) IndicatorMetadata {
	if meta, ok := KnownIndicators[id]; ok {
		return meta
	}
	return IndicatorMetadata{
		ID:        id,
		Name:      fmt.Sprintf("ESIOS Indicator %d", id),
		ShortName: fmt.Sprintf("Indicator %d", id),
		Category:  CategoryGeneration,
		Unit:      "MW",
	}
}

// Catalog maps indicator ids to channel roles
type Catalog struct {
	roles map[int]ChannelRole
}

// NewCatalog builds the role mapping for the three channels the metrics need
func NewCatalog(demandID, solarID, windID int) *Catalog {
	return &Catalog{roles: map[int]ChannelRole{
		demandID: RoleDemand,
		solarID:  RoleSolar,
		windID:   RoleWind,
	}}
}

// DefaultCatalog uses the standard ESIOS indicator ids
func DefaultCatalog() *Catalog {
	return NewCatalog(1293, 1161, 1159)
}

// RoleOf returns the role of an indicator, RoleNone when unmapped
func (c *Catalog) RoleOf(indicatorID int) ChannelRole {
	return c.roles[indicatorID]
}

// IndicatorFor returns the indicator id mapped to role
func (c *Catalog) IndicatorFor(role ChannelRole) (int, bool) {
	for id, r := range c.roles {
		if r == role {
			return id, true
		}
	}
	return 0, false
}

// IndicatorIDs returns the mapped ids in ascending order
func (c *Catalog) IndicatorIDs() []int {
	ids := make([]int, 0, len(c.roles))
	for id := range c.roles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
