package registry

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
)

func setupClient(t *testing.T) (*testChain, *OnchainRegistryClient, *KeyedSigner) {
	t.Helper()

	chain := newTestChain(testContractAddress, big.NewInt(1337))
	client, err := NewOnchainRegistryClient(chain, chain, testContractAddress, nil)
	require.NoError(t, err)

	signer := mustKey()
	client.SetSigner(signer)
	return chain, client, signer
}

func TestNewOnchainRegistryClient_Config(t *testing.T) {
	chain := newTestChain(testContractAddress, big.NewInt(1337))

	_, err := NewOnchainRegistryClient(nil, chain, testContractAddress, nil)
	assert.ErrorIs(t, err, interfaces.ErrConfig)

	_, err = NewOnchainRegistryClient(chain, nil, testContractAddress, nil)
	assert.ErrorIs(t, err, interfaces.ErrConfig)

	_, err = NewOnchainRegistryClient(chain, chain, common.Address{}, nil)
	assert.ErrorIs(t, err, interfaces.ErrConfig)
}

func TestOnchainRegistry_PublishAndGet(t *testing.T) {
	ctx := context.Background()
	_, client, signer := setupClient(t)

	confirmation, err := client.Publish(ctx, "NDA", "contract", "", "Qm123")
	require.NoError(t, err)
	require.NotNil(t, confirmation.DocumentID, "receipt should resolve the document id")
	assert.Equal(t, DeriveDocumentID("NDA", "contract", "", "Qm123"), *confirmation.DocumentID)
	assert.NotEqual(t, common.Hash{}, confirmation.TxHash)
	assert.Equal(t, uint64(1), confirmation.BlockNumber)

	record, err := client.Get(ctx, *confirmation.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, *confirmation.DocumentID, record.ID)
	assert.Equal(t, signer.Address(), record.Publisher)
	assert.Equal(t, "NDA", record.Title)
	assert.Equal(t, "contract", record.DocType)
	assert.Equal(t, "", record.Jurisdiction)
	assert.Equal(t, "Qm123", record.ContentHash)
	assert.NotZero(t, record.Timestamp)
	assert.False(t, record.Revoked)
}

func TestOnchainRegistry_PublishDuplicate(t *testing.T) {
	ctx := context.Background()
	chain, client, _ := setupClient(t)

	first, err := client.Publish(ctx, "Lease", "agreement", "CA", "QmLease")
	require.NoError(t, err)

	_, err = client.Publish(ctx, "Lease", "agreement", "CA", "QmLease")
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrDuplicateRecord)

	var dup *interfaces.DuplicateRecordError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, *first.DocumentID, dup.ID)

	assert.Equal(t, 1, chain.sent, "a rejected publish must not be sent")
}

func TestOnchainRegistry_NoSigner(t *testing.T) {
	ctx := context.Background()
	chain := newTestChain(testContractAddress, big.NewInt(1337))
	client, err := NewOnchainRegistryClient(chain, chain, testContractAddress, nil)
	require.NoError(t, err)

	_, err = client.Publish(ctx, "NDA", "contract", "", "Qm123")
	assert.ErrorIs(t, err, ErrNoTransactOpts)
	assert.ErrorIs(t, err, interfaces.ErrConfig)

	_, err = client.Revoke(ctx, interfaces.DocumentID{0x01})
	assert.ErrorIs(t, err, interfaces.ErrConfig)

	assert.Zero(t, chain.sent)
}

func TestOnchainRegistry_GetUnknown(t *testing.T) {
	_, client, _ := setupClient(t)

	_, err := client.Get(context.Background(), interfaces.DocumentID{0xaa})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestOnchainRegistry_Revoke(t *testing.T) {
	ctx := context.Background()
	chain, client, _ := setupClient(t)

	published, err := client.Publish(ctx, "Will", "testament", "NY", "QmWill")
	require.NoError(t, err)
	id := *published.DocumentID

	revoked, err := client.Revoke(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, revoked.DocumentID)
	assert.Equal(t, id, *revoked.DocumentID)

	record, err := client.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, record.Revoked)
	assert.Equal(t, "QmWill", record.ContentHash, "revocation leaves other fields untouched")

	sentBefore := chain.sent
	_, err = client.Revoke(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized, "revoking twice is rejected")
	assert.Equal(t, sentBefore, chain.sent)
}

func TestOnchainRegistry_RevokeRules(t *testing.T) {
	ctx := context.Background()
	chain, client, _ := setupClient(t)

	published, err := client.Publish(ctx, "Deed", "property", "TX", "QmDeed")
	require.NoError(t, err)

	other, err := NewOnchainRegistryClient(chain, chain, testContractAddress, nil)
	require.NoError(t, err)
	other.SetSigner(mustKey())

	_, err = other.Revoke(ctx, *published.DocumentID)
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)

	_, err = client.Revoke(ctx, interfaces.DocumentID{0x42})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	record, err := client.Get(ctx, *published.DocumentID)
	require.NoError(t, err)
	assert.False(t, record.Revoked)
}

func TestOnchainRegistry_Verify(t *testing.T) {
	ctx := context.Background()
	_, client, signer := setupClient(t)

	published, err := client.Publish(ctx, "NDA", "contract", "", "Qm123")
	require.NoError(t, err)
	record, err := client.Get(ctx, *published.DocumentID)
	require.NoError(t, err)

	valid, err := client.Verify(ctx, "Qm123", record.Timestamp, signer.Address())
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = client.Verify(ctx, "Qm123", record.Timestamp+1, signer.Address())
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = client.Verify(ctx, "Qm123", record.Timestamp, common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = client.Verify(ctx, "QmOther", record.Timestamp, signer.Address())
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestOnchainRegistry_PublishedNotifications(t *testing.T) {
	ctx := context.Background()
	chain, client, signer := setupClient(t)

	first, err := client.Publish(ctx, "A", "contract", "", "QmA")
	require.NoError(t, err)
	second, err := client.Publish(ctx, "B", "contract", "", "QmB")
	require.NoError(t, err)

	// A repeated log for the first document and a log from another contract.
	chain.appendLog(chain.publishedLog(*first.DocumentID, "A", "QmA", signer.Address()))
	foreign := chain.publishedLog(interfaces.DocumentID{0x09}, "X", "QmX", signer.Address())
	foreign.Address = common.HexToAddress("0x1234")
	chain.appendLog(foreign)

	notifications, err := client.PublishedNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 3)

	assert.Equal(t, *first.DocumentID, notifications[0].DocumentID)
	assert.Equal(t, "A", notifications[0].Title)
	assert.Equal(t, "QmA", notifications[0].ContentHash)
	assert.Equal(t, signer.Address(), notifications[0].Publisher)
	assert.Equal(t, first.TxHash, notifications[0].TxHash)

	assert.Equal(t, *second.DocumentID, notifications[1].DocumentID)
	assert.Equal(t, *first.DocumentID, notifications[2].DocumentID)
}

func TestOnchainRegistry_PublishedNotificationsFailure(t *testing.T) {
	chain, client, _ := setupClient(t)
	chain.filterErr = errors.New("rpc unavailable")

	_, err := client.PublishedNotifications(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrRegistryCall)
}

func TestOnchainRegistry_PublishWithoutEvent(t *testing.T) {
	chain, client, _ := setupClient(t)
	chain.suppressEvents = true

	confirmation, err := client.Publish(context.Background(), "NDA", "contract", "", "Qm123")
	require.NoError(t, err)
	assert.Nil(t, confirmation.DocumentID, "id must stay unknown when the receipt has no event")
	assert.NotEqual(t, common.Hash{}, confirmation.TxHash)
}

func TestClassify(t *testing.T) {
	chain, client, _ := setupClient(t)

	err := client.classify(methodRevoke, chain.revert(errorNotAuthorized))
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)

	id := [32]byte{0x01, 0x02}
	err = client.classify(methodPublish, chain.revert(errorAlreadyExists, id))
	var dup *interfaces.DuplicateRecordError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, interfaces.DocumentID(id), dup.ID)

	err = client.classify(methodPublish, &revertError{data: []byte{0xde, 0xad, 0xbe, 0xef}})
	assert.ErrorIs(t, err, interfaces.ErrRegistryCall)

	err = client.classify(methodPublish, errors.New("connection refused"))
	assert.ErrorIs(t, err, interfaces.ErrRegistryCall)

	err = client.classify(methodGet, context.DeadlineExceeded)
	assert.ErrorIs(t, err, interfaces.ErrRegistryCall)
}
