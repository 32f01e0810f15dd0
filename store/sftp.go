package store

import (
	"fmt"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// sftpStore lists directories over an SFTP session
type sftpStore struct {
	conn   *ssh.Client
	client *sftp.Client
}

// DialSFTP connects to an SSH server with key based authentication and opens
// an SFTP session over the connection
func DialSFTP(hostname, username, privateKeyFile, passphrase string) (Store, error) {
	keyBytes, err := os.ReadFile(privateKeyFile)
	if err != nil {
		return nil, UnavailableError{
			Err: fmt.Errorf("failed to read private key %s: %s",
				privateKeyFile, err.Error()),
		}
	}

	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(keyBytes)
	}
	if err != nil {
		return nil, UnavailableError{
			Err: fmt.Errorf("failed to parse private key %s: %s",
				privateKeyFile, err.Error()),
		}
	}

	conn, err := ssh.Dial("tcp", fmt.Sprintf("%s:22", hostname), &ssh.ClientConfig{
		User: username,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		// The original monitor auto-accepted unknown hosts, submissions
		// are pulled from a trusted course server.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if err != nil {
		return nil, UnavailableError{
			Err: fmt.Errorf("failed to connect to %s@%s: %s",
				username, hostname, err.Error()),
		}
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()

		return nil, UnavailableError{
			Err: fmt.Errorf("failed to open SFTP session on %s: %s",
				hostname, err.Error()),
		}
	}

	return &sftpStore{
		conn:   conn,
		client: client,
	}, nil
}

// List implements Store
func (s *sftpStore) List(dir string) ([]Info, error) {
	fileInfos, err := s.client.ReadDir(dir)
	if err != nil {
		return nil, UnavailableError{Path: dir, Err: err}
	}

	entries := []Info{}
	for _, fileInfo := range fileInfos {
		if fileInfo.IsDir() {
			continue
		}

		entries = append(entries, Info{
			Name:    fileInfo.Name(),
			Size:    fileInfo.Size(),
			ModTime: fileInfo.ModTime(),
		})
	}

	sortByModTime(entries)

	return entries, nil
}

// Close implements Store
func (s *sftpStore) Close() error {
	if err := s.client.Close(); err != nil {
		s.conn.Close()

		return fmt.Errorf("failed to close SFTP session: %s", err.Error())
	}

	return s.conn.Close()
}
