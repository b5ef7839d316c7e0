package od

// StandardBaudRates lists the CANopen bit rates in kbit/s that a
// [DeviceInfo] section may declare with BaudRate_<n>=1.
var StandardBaudRates = []uint32{10, 20, 50, 125, 250, 500, 800, 1000}

// DeviceInfo holds the [DeviceInfo] section.
type DeviceInfo struct {
	VendorName     string `json:"vendorName,omitempty" yaml:"vendorName,omitempty"`
	VendorNumber   uint32 `json:"vendorNumber" yaml:"vendorNumber"`
	ProductName    string `json:"productName,omitempty" yaml:"productName,omitempty"`
	ProductNumber  uint32 `json:"productNumber" yaml:"productNumber"`
	RevisionNumber uint32 `json:"revisionNumber" yaml:"revisionNumber"`
	OrderCode      string `json:"orderCode,omitempty" yaml:"orderCode,omitempty"`

	// BaudRates lists the supported bit rates in kbit/s, ascending.
	BaudRates []uint32 `json:"baudRates,omitempty" yaml:"baudRates,omitempty"`

	SimpleBootUpMaster       bool  `json:"simpleBootUpMaster" yaml:"simpleBootUpMaster"`
	SimpleBootUpSlave        bool  `json:"simpleBootUpSlave" yaml:"simpleBootUpSlave"`
	Granularity              uint8 `json:"granularity" yaml:"granularity"`
	DynamicChannelsSupported uint8 `json:"dynamicChannelsSupported" yaml:"dynamicChannelsSupported"`
	GroupMessaging           bool  `json:"groupMessaging" yaml:"groupMessaging"`

	NrOfRXPDO uint16 `json:"nrOfRxPdo" yaml:"nrOfRxPdo"`
	NrOfTXPDO uint16 `json:"nrOfTxPdo" yaml:"nrOfTxPdo"`

	LSSSupported bool `json:"lssSupported" yaml:"lssSupported"`
}

// SupportsBaudRate reports whether kbps is among the declared bit rates.
func (d DeviceInfo) SupportsBaudRate(kbps uint32) bool {
	for _, b := range d.BaudRates {
		if b == kbps {
			return true
		}
	}
	return false
}

// FileInfo holds the [FileInfo] section. Values are kept as written.
type FileInfo struct {
	FileName         string `json:"fileName,omitempty" yaml:"fileName,omitempty"`
	FileVersion      string `json:"fileVersion,omitempty" yaml:"fileVersion,omitempty"`
	FileRevision     string `json:"fileRevision,omitempty" yaml:"fileRevision,omitempty"`
	EDSVersion       string `json:"edsVersion,omitempty" yaml:"edsVersion,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	CreationTime     string `json:"creationTime,omitempty" yaml:"creationTime,omitempty"`
	CreationDate     string `json:"creationDate,omitempty" yaml:"creationDate,omitempty"`
	CreatedBy        string `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	ModificationTime string `json:"modificationTime,omitempty" yaml:"modificationTime,omitempty"`
	ModificationDate string `json:"modificationDate,omitempty" yaml:"modificationDate,omitempty"`
	ModifiedBy       string `json:"modifiedBy,omitempty" yaml:"modifiedBy,omitempty"`
}

// IsZero reports whether no FileInfo key was set.
func (f FileInfo) IsZero() bool { return f == FileInfo{} }

// Commissioning holds the [DeviceComissioning] section of a DCF.
type Commissioning struct {
	NodeID          uint8  `json:"nodeId,omitempty" yaml:"nodeId,omitempty"`
	NodeName        string `json:"nodeName,omitempty" yaml:"nodeName,omitempty"`
	Baudrate        uint32 `json:"baudrate,omitempty" yaml:"baudrate,omitempty"`
	NetNumber       uint32 `json:"netNumber,omitempty" yaml:"netNumber,omitempty"`
	NetworkName     string `json:"networkName,omitempty" yaml:"networkName,omitempty"`
	CANopenManager  bool   `json:"canopenManager,omitempty" yaml:"canopenManager,omitempty"`
	LSSSerialNumber uint32 `json:"lssSerialNumber,omitempty" yaml:"lssSerialNumber,omitempty"`
}

// IsZero reports whether no commissioning key was set.
func (c Commissioning) IsZero() bool { return c == Commissioning{} }
