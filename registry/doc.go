// Package registry provides a client for the on-chain DocumentRegistry
// contract that records legal documents by content hash.
//
// The package implements the interfaces.DocumentRegistry interface on top of
// go-ethereum's bound contract, using the contract ABI embedded in abi.go.
//
// # Transaction Operations
//
// Publish and Revoke modify state and require a signer. Before using them,
// call SetSigner with an interfaces.Signer such as KeyedSigner. Without one
// they fail with ErrNoTransactOpts, which wraps interfaces.ErrConfig.
//
// Every state-changing call is first simulated from the signer's address.
// Contract errors from the simulation are decoded into the interfaces error
// kinds:
//
//   - Document_Already_Exists(bytes32) becomes *interfaces.DuplicateRecordError
//   - Not_Authorized() becomes interfaces.ErrNotAuthorized
//   - anything else wraps interfaces.ErrRegistryCall
//
// The transaction is then signed, sent and awaited until mined or until the
// confirmation timeout expires. Publish resolves the new document identifier
// from the DocumentPublished log in the receipt. If the receipt carries no
// such log, the confirmation's DocumentID is nil.
//
// # Read Operations
//
// Get, Verify and PublishedNotifications need only the network backend.
// Get reports interfaces.ErrNotFound for unknown identifiers, which the
// contract answers with a zeroed record.
//
// # Usage Example
//
//	client, err := registry.NewOnchainRegistryClient(ethClient, ethClient, contractAddress, logger)
//	if err != nil {
//	    return err
//	}
//
//	signer, err := registry.NewKeyedSignerFromHex(privateKeyHex, chainID)
//	if err != nil {
//	    return err
//	}
//	client.SetSigner(signer)
//
//	confirmation, err := client.Publish(ctx, "NDA", "contract", "", contentHash)
//
// MockRegistryClient is an in-memory implementation with the same rules, and
// MockRegistry is a testify mock of the interface.
package registry
