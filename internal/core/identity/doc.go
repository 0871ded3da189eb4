// Package identity 提供本地节点标识
//
// 本地 PeerID 的来源（按优先级）：
//  1. 配置中显式给出的 identity.peer_id
//  2. 由 identity.public_key_hex 派生：urn:dep2p:peer:<Base58(BLAKE3-256(pubkey))>
//  3. 都未配置时生成临时 Ed25519 密钥并由其公钥派生（重启后变化）
//
// Local 同时给出本地接入点和到自身的直连路由，
// 路由应答与租约请求据此回显发送方位置。
package identity
