package eds

import "strings"

// Canonical key spellings. Lookups are case-insensitive; the exporter writes
// these spellings.
const (
	KeyParameterName   = "ParameterName"
	KeyObjectType      = "ObjectType"
	KeyDataType        = "DataType"
	KeyAccessType      = "AccessType"
	KeyDefaultValue    = "DefaultValue"
	KeyLowLimit        = "LowLimit"
	KeyHighLimit       = "HighLimit"
	KeyPDOMapping      = "PDOMapping"
	KeyStorageLocation = "StorageLocation"
	KeySubNumber       = "SubNumber"
	KeyCompactSubObj   = "CompactSubObj"
	KeyNumberOfEntries = "NumberOfEntries"
	KeyNrOfEntries     = "NrOfEntries"
	KeyParameterValue  = "ParameterValue"
	KeyDenotation      = "Denotation"
	KeyObjFlags        = "ObjFlags"
	KeyUploadFile      = "UploadFile"
	KeyDownloadFile    = "DownloadFile"

	KeyVendorName               = "VendorName"
	KeyVendorNumber             = "VendorNumber"
	KeyProductName              = "ProductName"
	KeyProductNumber            = "ProductNumber"
	KeyRevisionNumber           = "RevisionNumber"
	KeyOrderCode                = "OrderCode"
	KeySimpleBootUpMaster       = "SimpleBootUpMaster"
	KeySimpleBootUpSlave        = "SimpleBootUpSlave"
	KeyGranularity              = "Granularity"
	KeyDynamicChannelsSupported = "DynamicChannelsSupported"
	KeyGroupMessaging           = "GroupMessaging"
	KeyNrOfRXPDO                = "NrOfRXPDO"
	KeyNrOfTXPDO                = "NrOfTXPDO"
	KeyLSSSupported             = "LSS_Supported"
	KeyCompactPDO               = "CompactPDO"

	KeyFileName         = "FileName"
	KeyFileVersion      = "FileVersion"
	KeyFileRevision     = "FileRevision"
	KeyEDSVersion       = "EDSVersion"
	KeyDescription      = "Description"
	KeyCreationTime     = "CreationTime"
	KeyCreationDate     = "CreationDate"
	KeyCreatedBy        = "CreatedBy"
	KeyModificationTime = "ModificationTime"
	KeyModificationDate = "ModificationDate"
	KeyModifiedBy       = "ModifiedBy"

	KeyNodeID          = "NodeID"
	KeyNodeName        = "NodeName"
	KeyBaudrate        = "Baudrate"
	KeyNetNumber       = "NetNumber"
	KeyNetworkName     = "NetworkName"
	KeyCANopenManager  = "CANopenManager"
	KeyLSSSerialNumber = "LSS_SerialNumber"

	KeyLines            = "Lines"
	KeySupportedObjects = "SupportedObjects"
)

// Named section headers.
const (
	SectionFileInfo            = "FileInfo"
	SectionDeviceInfo          = "DeviceInfo"
	SectionDummyUsage          = "DummyUsage"
	SectionComments            = "Comments"
	SectionMandatoryObjects    = "MandatoryObjects"
	SectionOptionalObjects     = "OptionalObjects"
	SectionManufacturerObjects = "ManufacturerObjects"
	SectionDeviceComissioning  = "DeviceComissioning"
)

// baudRatePrefix starts the BaudRate_<kbps> keys of [DeviceInfo].
const baudRatePrefix = "baudrate_"

// objectKeys is the vocabulary of object and sub-object sections.
var objectKeys = vocabulary(
	KeyParameterName, KeyObjectType, KeyDataType, KeyAccessType,
	KeyDefaultValue, KeyLowLimit, KeyHighLimit, KeyPDOMapping,
	KeyStorageLocation, KeySubNumber, KeyCompactSubObj,
	KeyNumberOfEntries, KeyNrOfEntries, KeyParameterValue,
	KeyDenotation, KeyObjFlags, KeyUploadFile, KeyDownloadFile,
)

// sectionKeys is the vocabulary of each named section that carries fixed
// keys. Sections with numbered keys (Comments, object lists, DummyUsage)
// are validated by their own parsers.
var sectionKeys = map[string]map[string]string{
	strings.ToLower(SectionDeviceInfo): vocabulary(
		KeyVendorName, KeyVendorNumber, KeyProductName, KeyProductNumber,
		KeyRevisionNumber, KeyOrderCode, KeySimpleBootUpMaster,
		KeySimpleBootUpSlave, KeyGranularity, KeyDynamicChannelsSupported,
		KeyGroupMessaging, KeyNrOfRXPDO, KeyNrOfTXPDO, KeyLSSSupported,
		KeyCompactPDO,
	),
	strings.ToLower(SectionFileInfo): vocabulary(
		KeyFileName, KeyFileVersion, KeyFileRevision, KeyEDSVersion,
		KeyDescription, KeyCreationTime, KeyCreationDate, KeyCreatedBy,
		KeyModificationTime, KeyModificationDate, KeyModifiedBy,
	),
	strings.ToLower(SectionDeviceComissioning): vocabulary(
		KeyNodeID, KeyNodeName, KeyBaudrate, KeyNetNumber, KeyNetworkName,
		KeyCANopenManager, KeyLSSSerialNumber,
	),
}

func vocabulary(keys ...string) map[string]string {
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[strings.ToLower(k)] = k
	}
	return m
}

// normalizeKey returns the lookup form of a raw key.
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// knownObjectKey reports whether key belongs to the object vocabulary.
func knownObjectKey(key string) bool {
	_, ok := objectKeys[normalizeKey(key)]
	return ok
}

// knownSectionKey reports whether key belongs to the vocabulary of a named
// section. Unlisted sections accept any key.
func knownSectionKey(section, key string) bool {
	vocab, ok := sectionKeys[strings.ToLower(section)]
	if !ok {
		return true
	}
	k := normalizeKey(key)
	if _, ok := vocab[k]; ok {
		return true
	}
	return strings.EqualFold(section, SectionDeviceInfo) && strings.HasPrefix(k, baudRatePrefix)
}
