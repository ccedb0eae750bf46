package ifc

// ifc4Products lists the IFC4 product branch, supertypes first.
var ifc4Products = []EntityType{
	{1, "IfcRoot", "", true},
	{2, "IfcObjectDefinition", "IfcRoot", true},
	{3, "IfcObject", "IfcObjectDefinition", true},
	{4, "IfcProduct", "IfcObject", true},

	{10, "IfcElement", "IfcProduct", true},
	{11, "IfcBuildingElement", "IfcElement", true},
	{12, "IfcWall", "IfcBuildingElement", false},
	{13, "IfcWallStandardCase", "IfcWall", false},
	{14, "IfcWallElementedCase", "IfcWall", false},
	{15, "IfcSlab", "IfcBuildingElement", false},
	{16, "IfcSlabStandardCase", "IfcSlab", false},
	{17, "IfcSlabElementedCase", "IfcSlab", false},
	{18, "IfcRoof", "IfcBuildingElement", false},
	{19, "IfcBeam", "IfcBuildingElement", false},
	{20, "IfcBeamStandardCase", "IfcBeam", false},
	{21, "IfcColumn", "IfcBuildingElement", false},
	{22, "IfcColumnStandardCase", "IfcColumn", false},
	{23, "IfcDoor", "IfcBuildingElement", false},
	{24, "IfcDoorStandardCase", "IfcDoor", false},
	{25, "IfcWindow", "IfcBuildingElement", false},
	{26, "IfcWindowStandardCase", "IfcWindow", false},
	{27, "IfcStair", "IfcBuildingElement", false},
	{28, "IfcStairFlight", "IfcBuildingElement", false},
	{29, "IfcRamp", "IfcBuildingElement", false},
	{30, "IfcRampFlight", "IfcBuildingElement", false},
	{31, "IfcRailing", "IfcBuildingElement", false},
	{32, "IfcCovering", "IfcBuildingElement", false},
	{33, "IfcCurtainWall", "IfcBuildingElement", false},
	{34, "IfcPlate", "IfcBuildingElement", false},
	{35, "IfcPlateStandardCase", "IfcPlate", false},
	{36, "IfcMember", "IfcBuildingElement", false},
	{37, "IfcMemberStandardCase", "IfcMember", false},
	{38, "IfcFooting", "IfcBuildingElement", false},
	{39, "IfcPile", "IfcBuildingElement", false},
	{40, "IfcBuildingElementProxy", "IfcBuildingElement", false},
	{41, "IfcChimney", "IfcBuildingElement", false},
	{42, "IfcShadingDevice", "IfcBuildingElement", false},

	{50, "IfcFeatureElement", "IfcElement", true},
	{51, "IfcFeatureElementSubtraction", "IfcFeatureElement", true},
	{52, "IfcOpeningElement", "IfcFeatureElementSubtraction", false},
	{53, "IfcOpeningStandardCase", "IfcOpeningElement", false},
	{54, "IfcVoidingFeature", "IfcFeatureElementSubtraction", false},
	{55, "IfcFeatureElementAddition", "IfcFeatureElement", true},
	{56, "IfcProjectionElement", "IfcFeatureElementAddition", false},
	{57, "IfcSurfaceFeature", "IfcFeatureElement", false},

	{60, "IfcFurnishingElement", "IfcElement", false},
	{61, "IfcFurniture", "IfcFurnishingElement", false},
	{62, "IfcSystemFurnitureElement", "IfcFurnishingElement", false},

	{70, "IfcDistributionElement", "IfcElement", false},
	{71, "IfcDistributionFlowElement", "IfcDistributionElement", false},
	{72, "IfcFlowTerminal", "IfcDistributionFlowElement", false},
	{73, "IfcFlowSegment", "IfcDistributionFlowElement", false},
	{74, "IfcFlowFitting", "IfcDistributionFlowElement", false},
	{75, "IfcFlowController", "IfcDistributionFlowElement", false},
	{76, "IfcEnergyConversionDevice", "IfcDistributionFlowElement", false},
	{77, "IfcDistributionControlElement", "IfcDistributionElement", false},

	{80, "IfcElementAssembly", "IfcElement", false},
	{81, "IfcTransportElement", "IfcElement", false},
	{82, "IfcVirtualElement", "IfcElement", false},
	{83, "IfcGeographicElement", "IfcElement", false},
	{84, "IfcCivilElement", "IfcElement", false},
	{85, "IfcElementComponent", "IfcElement", true},
	{86, "IfcDiscreteAccessory", "IfcElementComponent", false},
	{87, "IfcFastener", "IfcElementComponent", false},
	{88, "IfcMechanicalFastener", "IfcElementComponent", false},
	{89, "IfcReinforcingBar", "IfcElementComponent", false},

	{100, "IfcSpatialElement", "IfcProduct", true},
	{101, "IfcSpatialStructureElement", "IfcSpatialElement", true},
	{102, "IfcSite", "IfcSpatialStructureElement", false},
	{103, "IfcBuilding", "IfcSpatialStructureElement", false},
	{104, "IfcBuildingStorey", "IfcSpatialStructureElement", false},
	{105, "IfcSpace", "IfcSpatialStructureElement", false},
	{106, "IfcSpatialZone", "IfcSpatialElement", false},
	{107, "IfcExternalSpatialStructureElement", "IfcSpatialElement", true},
	{108, "IfcExternalSpatialElement", "IfcExternalSpatialStructureElement", false},

	{120, "IfcProxy", "IfcProduct", false},
	{121, "IfcAnnotation", "IfcProduct", false},
	{122, "IfcGrid", "IfcProduct", false},
	{123, "IfcPort", "IfcProduct", true},
	{124, "IfcDistributionPort", "IfcPort", false},
}

// IFC4 returns the built-in IFC4 product schema.
func IFC4() *Schema {
	return NewSchema(ifc4Products)
}
