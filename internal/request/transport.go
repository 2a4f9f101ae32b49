package request

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// NewHTTPClient создаёт HTTP-клиент; caCertPath — опциональный CA для TLS.
// Таймаут запроса задаёт диспетчер через контекст, у клиента его нет.
func NewHTTPClient(caCertPath string) (*http.Client, error) {
	client := &http.Client{}
	if caCertPath == "" {
		return client, nil
	}

	tlsConfig, err := buildTLSConfig(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("загрузка CA-сертификата: %w", err)
	}
	client.Transport = &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: tlsConfig,
	}
	return client, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA-сертификатом.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("в файле %s нет PEM-сертификатов", caCertPath)
	}

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
