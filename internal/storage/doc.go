// Package storage загружает артефакты в объектное хранилище.
//
// S3Uploader использует aws-sdk-go-v2 и работает как с AWS S3, так и с
// S3-совместимыми хранилищами (MinIO, Ceph RGW) через Endpoint и PathStyle.
// Учётные данные берутся из стандартной цепочки AWS SDK и в конфигурации
// Keeper не хранятся.
package storage
