package opcua

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/exercise-simulator/internal/core"
)

const (
	defaultPKIDir  = "./pki"
	applicationURI = "urn:exercise-simulator:session"
)

// NamespaceNodes holds nodes for a specific namespace
type NamespaceNodes struct {
	Namespace  uint16
	FolderName string
	FolderDesc string
	NodeDefs   []core.NodeDefinition
	VarNodes   map[string]*server.VariableNode
	Values     map[string]interface{}
}

// Server wraps the OPC UA server and keeps the latest value of every
// registered node. Namespaces registered before Start are added to the
// address space once the server exists; without a server the values are
// still stored and readable.
type Server struct {
	srv    *server.Server
	port   int
	name   string
	pkiDir string
	mu     sync.RWMutex

	namespaces map[uint16]*NamespaceNodes
}

// NewServer creates a new OPC UA server
func NewServer(port int, simulatorName string) (*Server, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid OPC UA port %d", port)
	}
	return &Server{
		port:       port,
		name:       simulatorName,
		pkiDir:     defaultPKIDir,
		namespaces: make(map[uint16]*NamespaceNodes),
	}, nil
}

// SetPKIDir changes where the server certificate is kept
func (s *Server) SetPKIDir(dir string) {
	s.pkiDir = dir
}

// DataTypeID maps a node data type to its OPC UA data type node
func DataTypeID(dt core.DataType) ua.NodeID {
	switch dt {
	case core.DataTypeFloat:
		return ua.DataTypeIDFloat
	case core.DataTypeInt32:
		return ua.DataTypeIDInt32
	case core.DataTypeInt64:
		return ua.DataTypeIDInt64
	case core.DataTypeString:
		return ua.DataTypeIDString
	case core.DataTypeBool:
		return ua.DataTypeIDBoolean
	case core.DataTypeDateTime:
		return ua.DataTypeIDDateTime
	default:
		return ua.DataTypeIDDouble
	}
}

// ensurePKI creates the PKI directory and a self-signed certificate if none exist
func ensurePKI(dir, appName string) (certPath, keyPath string, err error) {
	certPath = filepath.Join(dir, "server.crt")
	keyPath = filepath.Join(dir, "server.key")

	if _, err := os.Stat(certPath); err == nil {
		log.Info().Str("certFile", certPath).Msg("Using existing PKI certificates")
		return certPath, keyPath, nil
	}

	log.Info().Msg("Generating self-signed certificates for OPC UA server")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create PKI directory: %w", err)
	}
	if err := createSelfSignedCert(appName, certPath, keyPath); err != nil {
		return "", "", err
	}
	return certPath, keyPath, nil
}

func createSelfSignedCert(appName, certPath, keyPath string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   appName,
			Organization: []string{"Exercise Simulator"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost", appName, "exercise-simulator"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("0.0.0.0")},
		URIs:                  []*url.URL{{Scheme: "urn", Opaque: "exercise-simulator:session"}},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	if err := writePEM(certPath, "CERTIFICATE", certDER, 0644); err != nil {
		return err
	}
	if err := writePEM(keyPath, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(privateKey), 0600); err != nil {
		return err
	}

	log.Info().
		Str("certPath", certPath).
		Str("keyPath", keyPath).
		Msg("Self-signed certificates generated successfully")
	return nil
}

func writePEM(path, blockType string, der []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		return fmt.Errorf("failed to encode %s: %w", blockType, err)
	}
	return nil
}

// Start starts the OPC UA server. Failure to create the server is not fatal:
// the simulator keeps running and values stay readable in memory.
func (s *Server) Start(ctx context.Context) error {
	endpoint := fmt.Sprintf("opc.tcp://0.0.0.0:%d", s.port)

	log.Info().
		Int("port", s.port).
		Str("endpoint", endpoint).
		Msg("Starting OPC UA server")

	certPath, keyPath, err := ensurePKI(s.pkiDir, s.name)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create PKI - OPC UA server disabled")
		return nil
	}

	var srv *server.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Warn().
					Interface("panic", r).
					Msg("OPC UA server creation panicked - running in value storage mode only")
			}
		}()

		var err error
		srv, err = server.New(
			ua.ApplicationDescription{
				ApplicationURI:  applicationURI,
				ProductURI:      "urn:exercise-simulator",
				ApplicationName: ua.LocalizedText{Text: "Exercise Simulator", Locale: "en"},
				ApplicationType: ua.ApplicationTypeServer,
			},
			certPath,
			keyPath,
			endpoint,
			server.WithAnonymousIdentity(true),
			server.WithSecurityPolicyNone(true),
			server.WithInsecureSkipVerify(),
		)
		if err != nil {
			log.Warn().
				Err(err).
				Msg("OPC UA server creation failed - running in value storage mode only")
			srv = nil
		}
	}()

	if srv == nil {
		log.Info().Msg("OPC UA server disabled - running simulator in data generation mode only")
		return nil
	}

	s.mu.Lock()
	s.srv = srv
	nodeCount := 0
	for _, ns := range s.namespaces {
		s.addNamespaceNodes(ns)
		nodeCount += len(ns.NodeDefs)
	}
	s.mu.Unlock()
	log.Info().Int("count", nodeCount).Msg("OPC UA nodes registered in address space")

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("OPC UA server panic")
			}
		}()
		if err := srv.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("OPC UA server error")
		}
	}()

	log.Info().Msg("OPC UA server started successfully")
	return nil
}

// Stop stops the OPC UA server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv != nil {
		return srv.Close()
	}
	return nil
}

// Running reports whether the address space is being served
func (s *Server) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.srv != nil
}

// RegisterNamespace creates a namespace with a root folder and one variable
// node per definition. Before Start the definitions are kept and added when
// the server comes up.
func (s *Server) RegisterNamespace(nsIndex uint16, folderName, folderDesc string, nodes []core.NodeDefinition) error {
	if nsIndex < 2 {
		return fmt.Errorf("namespace index %d is reserved", nsIndex)
	}
	if folderName == "" {
		return fmt.Errorf("namespace %d needs a folder name", nsIndex)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.namespaces[nsIndex]; exists {
		return fmt.Errorf("namespace %d already registered", nsIndex)
	}

	ns := &NamespaceNodes{
		Namespace:  nsIndex,
		FolderName: folderName,
		FolderDesc: folderDesc,
		NodeDefs:   slices.Clone(nodes),
		VarNodes:   make(map[string]*server.VariableNode),
		Values:     make(map[string]interface{}, len(nodes)),
	}
	for _, nodeDef := range nodes {
		if _, dup := ns.Values[nodeDef.Name]; dup {
			return fmt.Errorf("namespace %d: duplicate node %q", nsIndex, nodeDef.Name)
		}
		ns.Values[nodeDef.Name] = nodeDef.InitialValue
	}
	s.namespaces[nsIndex] = ns

	if s.srv != nil {
		s.addNamespaceNodes(ns)
	}

	log.Info().
		Uint16("namespace", nsIndex).
		Str("folder", folderName).
		Int("nodes", len(nodes)).
		Msg("Registered OPC UA namespace")
	return nil
}

// addNamespaceNodes adds a namespace's folder and variables to the address
// space. The caller holds s.mu.
func (s *Server) addNamespaceNodes(ns *NamespaceNodes) {
	nm := s.srv.NamespaceManager()
	folderID := ua.NodeIDString{NamespaceIndex: ns.Namespace, ID: ns.FolderName}

	folder := server.NewObjectNode(
		s.srv,
		folderID,
		ua.QualifiedName{NamespaceIndex: ns.Namespace, Name: ns.FolderName},
		ua.LocalizedText{Text: ns.FolderName},
		ua.LocalizedText{Text: ns.FolderDesc},
		nil,
		[]ua.Reference{
			{
				ReferenceTypeID: ua.ReferenceTypeIDOrganizes,
				IsInverse:       true,
				TargetID:        ua.ExpandedNodeID{NodeID: ua.ObjectIDObjectsFolder},
			},
		},
		0,
	)
	nm.AddNode(folder)

	now := time.Now().UTC()
	for _, nodeDef := range ns.NodeDefs {
		varNode := server.NewVariableNode(
			s.srv,
			ua.NodeIDString{NamespaceIndex: ns.Namespace, ID: ns.FolderName + "." + nodeDef.Name},
			ua.QualifiedName{NamespaceIndex: ns.Namespace, Name: nodeDef.Name},
			ua.LocalizedText{Text: nodeDef.DisplayName},
			ua.LocalizedText{Text: nodeDef.Description},
			nil,
			[]ua.Reference{
				{
					ReferenceTypeID: ua.ReferenceTypeIDHasComponent,
					IsInverse:       true,
					TargetID:        ua.ExpandedNodeID{NodeID: folderID},
				},
			},
			ua.NewDataValue(ns.Values[nodeDef.Name], 0, now, 0, now, 0),
			DataTypeID(nodeDef.DataType),
			ua.ValueRankScalar,
			[]uint32{},
			ua.AccessLevelsCurrentRead,
			250.0,
			false,
			nil,
		)
		nm.AddNode(varNode)
		ns.VarNodes[nodeDef.Name] = varNode
	}
}

// UpdateNamespaceValues updates values for a namespace. Names that were not
// registered are ignored.
func (s *Server) UpdateNamespaceValues(nsIndex uint16, values map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[nsIndex]
	if !ok {
		return
	}

	now := time.Now().UTC()
	for name, value := range values {
		if _, known := ns.Values[name]; !known {
			continue
		}
		ns.Values[name] = value
		if varNode, ok := ns.VarNodes[name]; ok {
			varNode.SetValue(ua.NewDataValue(value, 0, now, 0, now, 0))
		}
	}
}

// GetNamespaceValue returns a value from a namespace
func (s *Server) GetNamespaceValue(nsIndex uint16, name string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[nsIndex]
	if !ok {
		return nil, false
	}

	value, ok := ns.Values[name]
	return value, ok
}

// GetNamespaceValues returns a copy of all values of a namespace
func (s *Server) GetNamespaceValues(nsIndex uint16) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[nsIndex]
	if !ok {
		return nil
	}
	out := make(map[string]interface{}, len(ns.Values))
	for k, v := range ns.Values {
		out[k] = v
	}
	return out
}
